package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amonks/reviews/config"
	"github.com/amonks/reviews/db"
	"github.com/amonks/reviews/subcmd"
	"github.com/amonks/reviews/table"
	"github.com/amonks/reviews/watermark"
)

func status(ctx context.Context, args []string) error {
	subcmd := subcmd.New("status", "report the watermark, the output table, and recent harvests").
		SetArg("n", "int", "how many recent harvests to list (default 5)")
	configPath := subcmd.String("config", "", "path to a config file (yaml, toml, or json)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	runs := 5
	if subcmd.NArg() > 1 {
		return fmt.Errorf("expected at most one argument, got %d", subcmd.NArg())
	} else if subcmd.NArg() == 1 {
		n, err := strconv.Atoi(subcmd.Arg(0))
		if err != nil || n < 0 {
			return fmt.Errorf("expected a non-negative number of runs, got '%s'", subcmd.Arg(0))
		}
		runs = n
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	mark, err := watermark.New(cfg.Watermark.Path).Load()
	if err != nil {
		return err
	}
	rows, err := table.New(cfg.Output.Path).Count()
	if err != nil {
		return err
	}

	printSection("watermark", map[string]string{
		"file": cfg.Watermark.Path,
		"last": watermark.Format(mark),
	})
	humanPrinter.Printf("OUTPUT\n  %d\trows in %s\n\n", rows, cfg.Output.Path)

	if cfg.Archive.Path == "" {
		return nil
	}
	if _, err := os.Stat(cfg.Archive.Path); errors.Is(err, os.ErrNotExist) {
		humanPrinter.Printf("ARCHIVE\n  none yet at %s\n", cfg.Archive.Path)
		return nil
	}

	archive, err := db.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer archive.Close()

	archived, err := archive.CountReviews(ctx)
	if err != nil {
		return err
	}
	recent, err := archive.RecentRuns(ctx, runs)
	if err != nil {
		return err
	}

	humanPrinter.Printf("ARCHIVE\n  %d\treviews in %s\n", archived, cfg.Archive.Path)
	for _, run := range recent {
		humanPrinter.Printf("  run %d\t%s\t%d pages, %d albums, %d new, %d reviews\n",
			run.ID, watermark.Format(run.FinishedAt),
			run.Pages, run.AlbumsSeen, run.AlbumsNew, run.ReviewsWritten)
	}
	humanPrinter.Printf("\n")

	return nil
}

var humanPrinter = message.NewPrinter(language.English)

func printSection(name string, fields map[string]string) {
	humanPrinter.Printf("%s\n", strings.ToUpper(name))
	for k, v := range fields {
		humanPrinter.Printf("  %s\t%s\n", k, v)
	}
	humanPrinter.Printf("\n")
}
