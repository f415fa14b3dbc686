package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cmd: 'frobnicate'")
	assert.Contains(t, err.Error(), "usage: reviews")
}

func TestRunHelp(t *testing.T) {
	assert.NoError(t, run(context.Background(), []string{"help"}))
}

func TestRunFlagHelp(t *testing.T) {
	err := run(context.Background(), []string{"status", "-help"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRunStatus(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "reviews.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"watermark:\n  path: "+filepath.Join(dir, "mark.txt")+"\n"+
			"output:\n  path: "+filepath.Join(dir, "out.csv")+"\n"+
			"archive:\n  path: "+filepath.Join(dir, "reviews.db")+"\n",
	), 0o644))

	assert.NoError(t, run(context.Background(), []string{"status", "-config", configPath, "3"}))

	_, err := os.Stat(filepath.Join(dir, "reviews.db"))
	assert.ErrorIs(t, err, os.ErrNotExist, "status never creates the archive")
}

func TestRunStatusRejectsBadCount(t *testing.T) {
	err := run(context.Background(), []string{"status", "many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a non-negative number of runs")
}

func TestRunHarvestCanceled(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "reviews.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"listing:\n  url: http://127.0.0.1:1/\n"+
			"watermark:\n  path: "+filepath.Join(dir, "mark.txt")+"\n"+
			"output:\n  path: "+filepath.Join(dir, "out.csv")+"\n"+
			"archive:\n  path: "+filepath.Join(dir, "reviews.db")+"\n",
	), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, []string{"-config", configPath})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = os.Stat(filepath.Join(dir, "mark.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
