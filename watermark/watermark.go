// Package watermark persists the moment of the last successful harvest, so
// the next run only fetches reviews for albums released since then.
package watermark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Layout is the on-disk format: one line, no timezone.
const Layout = "2006-01-02 15:04:05"

// Epoch is what Load returns before anything has ever been saved. Every album
// is released after it.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.Local)

func New(filename string) *Store {
	return &Store{filename: filename}
}

type Store struct {
	filename string
}

func (s *Store) Filename() string { return s.filename }

// Load reads the stored watermark. A missing file is not an error; it means
// we have never harvested, and Load returns Epoch.
func (s *Store) Load() (time.Time, error) {
	if _, err := os.Stat(s.filename); errors.Is(err, os.ErrNotExist) {
		return Epoch, nil
	} else if err != nil {
		return time.Time{}, fmt.Errorf("error statting watermark file '%s': %w", s.filename, err)
	}

	bs, err := os.ReadFile(s.filename)
	if err != nil {
		return time.Time{}, fmt.Errorf("error reading watermark file '%s': %w", s.filename, err)
	}

	t, err := Parse(string(bs))
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing watermark file '%s': %w", s.filename, err)
	}
	return t, nil
}

// Save overwrites the stored watermark with t, truncated to the second.
//
// The new value is written to a sibling temp file and renamed into place, so
// readers see either the old line or the new one.
func (s *Store) Save(t time.Time) error {
	dir := filepath.Dir(s.filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.filename)+".*")
	if err != nil {
		return fmt.Errorf("error creating temp file for watermark '%s': %w", s.filename, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(Format(t)); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing watermark '%s': %w", s.filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing watermark '%s': %w", s.filename, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("error setting mode on watermark '%s': %w", s.filename, err)
	}
	if err := os.Rename(tmp.Name(), s.filename); err != nil {
		return fmt.Errorf("error replacing watermark '%s': %w", s.filename, err)
	}
	return nil
}

// Format renders t in Layout, in local time.
func Format(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// Parse reads a watermark line written by Format. Surrounding whitespace is
// ignored.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, strings.TrimSpace(s), time.Local)
}
