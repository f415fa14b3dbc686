// Package readthrough keeps copies of fetched pages on disk, keyed by URL, so
// a development run can replay album pages without hitting the network.
package readthrough

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// New returns a cache rooted at dir, creating dir if necessary. Every file it
// writes is named prefix followed by the hex sha256 of the key.
func New(dir, prefix string) (*ReadThrough, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("error creating cache dir '%s': %w", dir, err)
	}
	return &ReadThrough{dir: dir, prefix: prefix}, nil
}

type ReadThrough struct {
	dir, prefix string
}

var ErrMiss = errors.New("cache miss")

// Get opens the cached copy of key. It returns an error wrapping ErrMiss if
// there isn't one.
func (rt *ReadThrough) Get(key string) (io.ReadCloser, error) {
	hash, filename := rt.hashAndFilename(key)

	cache, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cache miss for '%s' (%s): %w", key, hash, ErrMiss)
	} else if err != nil {
		return nil, fmt.Errorf("error opening cache file '%s' for read: %w", hash, err)
	}

	return cache, nil
}

// Set drains r into the cache under key and returns a reader over the same
// bytes. r is closed.
func (rt *ReadThrough) Set(key string, r io.ReadCloser) (io.ReadCloser, error) {
	defer r.Close()
	hash, filename := rt.hashAndFilename(key)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("error reading body for cache file '%s': %w", hash, err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}

	return io.NopCloser(&buf), nil
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
