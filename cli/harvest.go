package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amonks/reviews/config"
	"github.com/amonks/reviews/db"
	"github.com/amonks/reviews/harvester"
	"github.com/amonks/reviews/logging"
	"github.com/amonks/reviews/metacritic"
	"github.com/amonks/reviews/readthrough"
	"github.com/amonks/reviews/request"
	"github.com/amonks/reviews/subcmd"
	"github.com/amonks/reviews/table"
	"github.com/amonks/reviews/watermark"
)

func harvest(ctx context.Context, args []string) error {
	subcmd := subcmd.New("harvest", "append reviews of albums released since the last harvest")
	configPath := subcmd.String("config", "", "path to a config file (yaml, toml, or json)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	out := table.New(cfg.Output.Path)
	if err := out.Ensure(); err != nil {
		return err
	}

	marks := watermark.New(cfg.Watermark.Path)
	mark, err := marks.Load()
	if err != nil {
		return err
	}

	client := request.New(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	if cfg.Cache.Dir != "" {
		cache, err := readthrough.New(cfg.Cache.Dir, "album")
		if err != nil {
			return err
		}
		client = client.WithCache(cache)
		logger.Info("caching album pages", zap.String("dir", cfg.Cache.Dir))
	}

	h := harvester.New(harvester.Config{
		ListingURL: cfg.Listing.URL,
		StopAtSeen: cfg.Harvest.StopAtSeen,
	}, metacritic.New(client), out, marks, logger)

	if cfg.Archive.Path != "" {
		archive, err := db.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer archive.Close()
		h.WithArchive(archive)
	}

	state, report, err := h.Run(ctx, harvester.State{Watermark: mark})
	if err != nil {
		return fmt.Errorf("harvest error: %w", err)
	}

	humanPrinter.Printf("%d listing pages, %d albums, %d released since %s\n",
		report.Pages, report.AlbumsSeen, report.AlbumsNew, watermark.Format(mark))
	humanPrinter.Printf("%d reviews appended to %s\n", report.ReviewsWritten, out.Filename())
	humanPrinter.Printf("watermark: %s\n", watermark.Format(state.Watermark))

	return nil
}
