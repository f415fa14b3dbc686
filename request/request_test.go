package request_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amonks/reviews/readthrough"
	"github.com/amonks/reviews/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTMLSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>hello</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := request.New("", 0).FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, request.DefaultUserAgent, gotUA)
	assert.Equal(t, "hello", doc.Find("h1").Text())
}

func TestFetchHTMLFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := request.New("", 0).FetchHTML(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status code 403")
}

func TestFetchHTMLRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := request.New("", 0).FetchHTML(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "expected an html response")
}

func TestFetchHTMLAcceptsHTMLVariants(t *testing.T) {
	for _, contentType := range []string{
		"text/html",
		"text/html; charset=utf-8",
		"application/xhtml+xml",
		"application/xhtml+xml; charset=utf-8",
	} {
		t.Run(contentType, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", contentType)
				w.Write([]byte(`<html><body><h1>hello</h1></body></html>`))
			}))
			defer srv.Close()

			doc, err := request.New("", 0).FetchHTML(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, "hello", doc.Find("h1").Text())
		})
	}
}

func TestFetchHTMLCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<p>cached</p>`))
	}))
	defer srv.Close()

	rt, err := readthrough.New(t.TempDir(), "")
	require.NoError(t, err)
	client := request.New("test-agent", 0).WithCache(rt)

	for i := 0; i < 3; i++ {
		doc, err := client.FetchHTMLCached(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "cached", doc.Find("p").Text())
	}
	assert.Equal(t, 1, hits)

	_, err = client.FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "FetchHTML never reads the cache")
}

func TestFetchHTMLCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := request.New("", 0).FetchHTML(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
