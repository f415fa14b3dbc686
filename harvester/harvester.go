// Package harvester runs one incremental harvest: walk the whole album
// listing, keep the albums released since the watermark, fetch their reviews,
// and persist them.
//
// Nothing is written until every review has been fetched. If any step fails,
// the output table, the archive, and the watermark are left as they were, so
// the next run sees the same candidates.
package harvester

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amonks/reviews/data"
	"github.com/amonks/reviews/watermark"
)

// Source provides listing pages and album reviews. *metacritic.Source is one.
type Source interface {
	FetchListingPage(ctx context.Context, url string) ([]data.Album, string, error)
	FetchReviews(ctx context.Context, albumURL string) ([]data.Review, error)
}

// Table receives merged rows. *table.Table is one.
type Table interface {
	Append(rows []data.Row) error
}

// Watermarks persists the new watermark. *watermark.Store is one.
type Watermarks interface {
	Save(t time.Time) error
}

// Archive keeps a queryable copy of each harvest. *db.DB is one.
// RecordHarvest must call then before making the copy durable, and discard
// the copy if then fails.
type Archive interface {
	RecordHarvest(ctx context.Context, run *data.Run, rows []data.Row, then func() error) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is everything a harvest needs to carry over from the previous one.
type State struct {
	// Reviews for albums released at or before this moment have already been
	// harvested.
	Watermark time.Time
}

// Report describes what a run did.
type Report struct {
	Pages          int
	AlbumsSeen     int
	AlbumsNew      int
	ReviewsWritten int
}

type Config struct {
	ListingURL string

	// Stop paginating after a page none of whose albums are newer than the
	// watermark. Off by default: the listing is walked to the end.
	StopAtSeen bool
}

type Harvester struct {
	cfg     Config
	src     Source
	table   Table
	marks   Watermarks
	archive Archive
	clock   Clock
	log     *zap.Logger
}

func New(cfg Config, src Source, table Table, marks Watermarks, logger *zap.Logger) *Harvester {
	return &Harvester{
		cfg:   cfg,
		src:   src,
		table: table,
		marks: marks,
		clock: systemClock{},
		log:   logger,
	}
}

// WithArchive records every successful harvest in archive as well.
func (h *Harvester) WithArchive(archive Archive) *Harvester {
	h.archive = archive
	return h
}

func (h *Harvester) WithClock(clock Clock) *Harvester {
	h.clock = clock
	return h
}

// Run performs one harvest starting from state. It returns the state the next
// run should start from: unchanged unless new rows were written.
//
// Rows are written before the watermark is saved. A crash between the two
// means the next run appends the same rows again; the reverse order would
// lose them instead.
func (h *Harvester) Run(ctx context.Context, state State) (State, Report, error) {
	var report Report
	startedAt := h.clock.Now()
	h.log.Info("last scraped timestamp", zap.String("watermark", watermark.Format(state.Watermark)))

	albums, pages, err := h.crawl(ctx, state.Watermark)
	report.Pages, report.AlbumsSeen = pages, len(albums)
	if err != nil {
		return state, report, err
	}

	fresh := Filter(albums, state.Watermark)
	report.AlbumsNew = len(fresh)

	rows, err := h.collect(ctx, fresh)
	if err != nil {
		return state, report, err
	}

	if len(rows) == 0 {
		h.log.Info("no new reviews to add",
			zap.Int("albums_seen", report.AlbumsSeen),
			zap.Int("albums_new", report.AlbumsNew))
		return state, report, nil
	}

	next := State{Watermark: h.clock.Now().Truncate(time.Second)}
	if err := h.commit(ctx, state, next, startedAt, &report, rows); err != nil {
		return state, report, err
	}
	return next, report, nil
}

// crawl walks the listing from the first page until there is no next link,
// returning every album in listing order and the number of pages visited.
func (h *Harvester) crawl(ctx context.Context, mark time.Time) ([]data.Album, int, error) {
	var all []data.Album
	visited := map[string]struct{}{}
	pages := 0

	for url := h.cfg.ListingURL; url != ""; {
		if err := ctx.Err(); err != nil {
			return all, pages, fmt.Errorf("canceled: %w", err)
		}
		if _, seen := visited[url]; seen {
			h.log.Warn("listing links back to a page we already visited; stopping", zap.String("url", url))
			break
		}
		visited[url] = struct{}{}

		albums, next, err := h.src.FetchListingPage(ctx, url)
		if err != nil {
			return all, pages, fmt.Errorf("error fetching listing page %d: %w", pages+1, err)
		}
		pages++
		all = append(all, albums...)
		h.log.Info("scraped listing page",
			zap.Int("page", pages),
			zap.Int("albums", len(albums)),
			zap.String("url", url))

		if h.cfg.StopAtSeen && len(albums) > 0 && len(Filter(albums, mark)) == 0 {
			h.log.Info("page has nothing newer than the watermark; stopping early", zap.String("url", url))
			break
		}
		url = next
	}

	return all, pages, nil
}

// collect fetches reviews for each album, in order, merging in album
// metadata.
func (h *Harvester) collect(ctx context.Context, albums []data.Album) ([]data.Row, error) {
	var rows []data.Row
	for i, album := range albums {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}

		h.log.Info("scraping album",
			zap.String("url", album.URL),
			zap.String("released", album.FormattedReleaseDate()),
			zap.Int("n", i+1),
			zap.Int("of", len(albums)))

		reviews, err := h.src.FetchReviews(ctx, album.URL)
		if err != nil {
			return nil, fmt.Errorf("error fetching reviews for '%s' by '%s': %w", album.Title, album.Artist, err)
		}
		for _, review := range reviews {
			rows = append(rows, data.Merge(album, review))
		}
	}
	return rows, nil
}

// commit persists rows: the archive and the output table together, then the
// watermark. The table append happens inside the archive's transaction, so a
// failed append rolls the archive back and a failed archive never reaches the
// table. A failure after that leaves the watermark behind, so the rows are
// harvested again rather than lost.
func (h *Harvester) commit(ctx context.Context, prev, next State, startedAt time.Time, report *Report, rows []data.Row) error {
	var appendErr error
	appendRows := func() error {
		if appendErr = h.table.Append(rows); appendErr != nil {
			return appendErr
		}
		report.ReviewsWritten = len(rows)
		return nil
	}

	if h.archive == nil {
		if err := appendRows(); err != nil {
			return fmt.Errorf("error appending %d rows: %w", len(rows), err)
		}
	} else {
		run := &data.Run{
			StartedAt:       startedAt,
			FinishedAt:      next.Watermark,
			WatermarkBefore: prev.Watermark,
			WatermarkAfter:  next.Watermark,
			Pages:           int64(report.Pages),
			AlbumsSeen:      int64(report.AlbumsSeen),
			AlbumsNew:       int64(report.AlbumsNew),
			ReviewsWritten:  int64(len(rows)),
		}
		if err := h.archive.RecordHarvest(ctx, run, rows, appendRows); err != nil {
			if appendErr != nil {
				return fmt.Errorf("error appending %d rows: %w", len(rows), appendErr)
			}
			return fmt.Errorf("error archiving %d rows: %w", len(rows), err)
		}
	}

	if err := h.marks.Save(next.Watermark); err != nil {
		return fmt.Errorf("error saving watermark: %w", err)
	}

	h.log.Info("new reviews added",
		zap.Int("reviews", len(rows)),
		zap.String("watermark", watermark.Format(next.Watermark)))
	return nil
}

// Filter returns the albums released strictly after mark, in their original
// order.
func Filter(albums []data.Album, mark time.Time) []data.Album {
	var fresh []data.Album
	for _, album := range albums {
		if album.ReleasedAfter(mark) {
			fresh = append(fresh, album)
		}
	}
	return fresh
}
