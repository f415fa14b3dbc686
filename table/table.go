// Package table is the append-only CSV file that harvested reviews end up in.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amonks/reviews/data"
)

func New(filename string) *Table {
	return &Table{filename: filename}
}

type Table struct {
	filename string
}

func (t *Table) Filename() string { return t.filename }

// Ensure creates the file with a header row if it is missing or empty. It
// never touches a file that already has content.
func (t *Table) Ensure() error {
	f, err := os.OpenFile(t.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("error opening output table '%s': %w", t.filename, err)
	}
	defer f.Close()

	empty, err := isEmpty(f)
	if err != nil {
		return fmt.Errorf("error checking output table '%s': %w", t.filename, err)
	}
	if !empty {
		return nil
	}
	return t.write(f, nil, true)
}

// Append adds rows to the end of the file. Existing rows are left alone; a
// header is written first only if the file is empty.
func (t *Table) Append(rows []data.Row) error {
	f, err := os.OpenFile(t.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("error opening output table '%s': %w", t.filename, err)
	}
	defer f.Close()

	empty, err := isEmpty(f)
	if err != nil {
		return fmt.Errorf("error checking output table '%s': %w", t.filename, err)
	}
	if err := t.write(f, rows, empty); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing output table '%s': %w", t.filename, err)
	}
	return nil
}

// Count returns the number of rows in the file, not counting the header. A
// missing file has none.
func (t *Table) Count() (int, error) {
	f, err := os.Open(t.filename)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error opening output table '%s': %w", t.filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	count := 0
	for {
		if _, err := r.Read(); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, fmt.Errorf("error reading output table '%s': %w", t.filename, err)
		}
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return count - 1, nil
}

func (t *Table) write(w io.Writer, rows []data.Row, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(data.Columns); err != nil {
			return fmt.Errorf("error writing header to '%s': %w", t.filename, err)
		}
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("error writing row to '%s': %w", t.filename, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("error flushing '%s': %w", t.filename, err)
	}
	return nil
}

func isEmpty(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}
