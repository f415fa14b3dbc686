package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/amonks/reviews/data"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our sqlite3 archive file.
type DB struct{ *gorm.DB }

//go:embed schema.sql
var schema string

// Open returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
func Open(filename string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(filename), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}

	db := &DB{gdb}

	if err := db.Exec(schema).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating db at '%s': %w", filename, err)
	}

	return db, nil
}

func (db *DB) Close() error {
	pool, err := db.DB.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// RecordHarvest inserts run, and then every row under it, in one transaction.
// If then is non-nil it is called after the inserts, before the commit, and
// an error from it rolls everything back. run.ID is set on success.
func (db *DB) RecordHarvest(ctx context.Context, run *data.Run, rows []data.Row, then func() error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("error inserting run started at %s: %w", run.StartedAt, err)
		}

		if len(rows) > 0 {
			archived := make([]data.ArchivedReview, len(rows))
			for i, row := range rows {
				archived[i] = row.Archive(run.FinishedAt)
				archived[i].RunID = run.ID
			}
			if err := tx.CreateInBatches(archived, 100).Error; err != nil {
				return fmt.Errorf("error inserting %d reviews for run %d: %w", len(archived), run.ID, err)
			}
		}

		if then != nil {
			return then()
		}
		return nil
	})
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]data.Run, error) {
	var runs []data.Run
	if err := db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&runs).
		Error; err != nil {
		return nil, fmt.Errorf("error getting %d recent runs: %w", limit, err)
	}
	return runs, nil
}

func (db *DB) CountReviews(ctx context.Context) (int, error) {
	var count int64
	if err := db.WithContext(ctx).
		Table("reviews").
		Count(&count).
		Error; err != nil {
		return 0, fmt.Errorf("error counting reviews: %w", err)
	}
	return int(count), nil
}

// ReviewsForRun returns the rows written by one run, in insertion order.
func (db *DB) ReviewsForRun(ctx context.Context, runID int64) ([]data.ArchivedReview, error) {
	var reviews []data.ArchivedReview
	if err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&reviews).
		Error; err != nil {
		return nil, fmt.Errorf("error getting reviews for run %d: %w", runID, err)
	}
	return reviews, nil
}
