// Package request fetches HTML pages the way the harvester needs them: one
// blocking GET at a time, with a fixed User-Agent, failing on any non-2xx
// status.
package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/reviews/readthrough"
)

// DefaultUserAgent is enough to get past the listing site's trivial bot
// check.
const DefaultUserAgent = "Mozilla/5.0"

// New creates a Client. A zero timeout means requests never time out.
func New(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type Client struct {
	userAgent string
	http      *http.Client
	cache     *readthrough.ReadThrough
}

// WithCache makes FetchHTMLCached consult rt before going to the network.
func (c *Client) WithCache(rt *readthrough.ReadThrough) *Client {
	c.cache = rt
	return c
}

// FetchHTML does an HTTP GET on the given URL, then parses the response as
// HTML.
func (c *Client) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parse(url, body)
}

// FetchHTMLCached is FetchHTML, except that if the client has a cache, pages
// are served from it when present and stored in it when not.
func (c *Client) FetchHTMLCached(ctx context.Context, url string) (*goquery.Document, error) {
	if c.cache == nil {
		return c.FetchHTML(ctx, url)
	}

	if cached, err := c.cache.Get(url); err == nil {
		return parse(url, cached)
	} else if !errors.Is(err, readthrough.ErrMiss) {
		return nil, err
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	body, err = c.cache.Set(url, body)
	if err != nil {
		return nil, err
	}
	return parse(url, body)
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for '%s': %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching '%s': %w", url, err)
	}
	if err := Error(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status from '%s': %w", url, err)
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && !strings.Contains(mediaType, "html") {
			resp.Body.Close()
			return nil, fmt.Errorf("expected an html response at '%s', but got '%s'", url, contentType)
		}
	}

	return resp.Body, nil
}

func parse(url string, body io.ReadCloser) (*goquery.Document, error) {
	defer body.Close()
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing html from '%s': %w", url, err)
	}
	return doc, nil
}

// Error checks the given http response for an error code, and, if one is
// present, reads the body and returns a friendly error.
func Error(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bs, err := httputil.DumpResponse(resp, true)
		if err != nil {
			return fmt.Errorf("http status code %d; error decoding body: %w", resp.StatusCode, err)
		} else {
			return fmt.Errorf("http status code %d:\n%s", resp.StatusCode, string(bs))
		}
	}
	return nil
}
