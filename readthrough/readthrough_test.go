package readthrough_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/reviews/readthrough"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissThenHit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pages")
	rt, err := readthrough.New(dir, "album-")
	require.NoError(t, err)

	_, err = rt.Get("https://example.com/music/a")
	require.ErrorIs(t, err, readthrough.ErrMiss)

	r, err := rt.Set("https://example.com/music/a", io.NopCloser(strings.NewReader("<html>a</html>")))
	require.NoError(t, err)
	bs, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(bs))

	cached, err := rt.Get("https://example.com/music/a")
	require.NoError(t, err)
	defer cached.Close()
	bs, err = io.ReadAll(cached)
	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", string(bs))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "album-"))
}

func TestKeysDoNotCollide(t *testing.T) {
	rt, err := readthrough.New(t.TempDir(), "")
	require.NoError(t, err)

	_, err = rt.Set("a", io.NopCloser(strings.NewReader("first")))
	require.NoError(t, err)

	_, err = rt.Get("b")
	assert.ErrorIs(t, err, readthrough.ErrMiss)
}
