package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/reviews/data"
	"github.com/amonks/reviews/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *db.DB {
	t.Helper()
	archive, err := db.Open(filepath.Join(t.TempDir(), "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })
	return archive
}

func TestOpenIsIdempotent(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "reviews.db")
	for i := 0; i < 2; i++ {
		archive, err := db.Open(filename)
		require.NoError(t, err)
		require.NoError(t, archive.Close())
	}
}

func TestRecordHarvest(t *testing.T) {
	ctx := context.Background()
	archive := open(t)

	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	run := &data.Run{
		StartedAt:       now.Add(-time.Minute),
		FinishedAt:      now,
		WatermarkBefore: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		WatermarkAfter:  now,
		Pages:           1,
		AlbumsSeen:      2,
		AlbumsNew:       2,
		ReviewsWritten:  2,
	}
	rows := []data.Row{
		{Review: data.Review{Publication: "A", Score: "1", Quote: "q", Date: "d"}, Album: "X", Artist: "Y", ReleaseDate: "2024-06-01", AlbumURL: "https://example.com/x"},
		{Review: data.Review{Publication: "B", Score: "2", Quote: "q", Date: "d"}, Album: "X", Artist: "Y", ReleaseDate: "2024-06-01", AlbumURL: "https://example.com/x"},
	}
	require.NoError(t, archive.RecordHarvest(ctx, run, rows, nil))
	assert.NotZero(t, run.ID)

	count, err := archive.CountReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	reviews, err := archive.ReviewsForRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "A", reviews[0].Publication)
	assert.Equal(t, "https://example.com/x", reviews[1].AlbumURL)

	runs, err := archive.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(2), runs[0].ReviewsWritten)
	assert.True(t, runs[0].WatermarkAfter.Equal(now))
}

func TestRecentRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	archive := open(t)

	for i := 1; i <= 3; i++ {
		ts := time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, archive.RecordHarvest(ctx, &data.Run{
			StartedAt: ts, FinishedAt: ts, WatermarkBefore: ts, WatermarkAfter: ts,
			ReviewsWritten: int64(i),
		}, nil, nil))
	}

	runs, err := archive.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(3), runs[0].ReviewsWritten)
	assert.Equal(t, int64(2), runs[1].ReviewsWritten)
}

func TestRecordHarvestRunsCallbackInTransaction(t *testing.T) {
	ctx := context.Background()
	archive := open(t)

	ts := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)
	rows := []data.Row{
		{Review: data.Review{Publication: "A", Score: "1", Quote: "q", Date: "d"}, Album: "X", Artist: "Y", ReleaseDate: "2024-06-01"},
	}

	called := 0
	err := archive.RecordHarvest(ctx, &data.Run{StartedAt: ts, FinishedAt: ts, WatermarkBefore: ts, WatermarkAfter: ts}, rows,
		func() error {
			called++
			return errors.New("disk full")
		})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, called)

	count, err := archive.CountReviews(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "reviews are rolled back")

	runs, err := archive.RecentRuns(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, runs, "the run is rolled back")

	require.NoError(t, archive.RecordHarvest(ctx, &data.Run{StartedAt: ts, FinishedAt: ts, WatermarkBefore: ts, WatermarkAfter: ts}, rows,
		func() error {
			called++
			return nil
		}))
	assert.Equal(t, 2, called)

	count, err = archive.CountReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
