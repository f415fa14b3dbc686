// Package metacritic scrapes the album release-date listing and album review
// pages. All knowledge of the site's markup lives in this package: listing.go
// for the listing pages and reviews.go for album pages.
package metacritic

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListingURL is the first page of the condensed release-date listing.
const ListingURL = "https://www.metacritic.com/browse/albums/release-date/available/date?view=condensed"

// A Fetcher returns parsed HTML for a URL. *request.Client is one.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string) (*goquery.Document, error)
	FetchHTMLCached(ctx context.Context, url string) (*goquery.Document, error)
}

// Source fetches and extracts listing and album pages.
type Source struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Source {
	return &Source{fetcher: fetcher}
}

// resolve turns an href found on the page at base into an absolute URL.
func resolve(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("error parsing page url '%s': %w", base, err)
	}
	u, err := b.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("error parsing link '%s' on '%s': %w", href, base, err)
	}
	return u.String(), nil
}

// text is the trimmed text of the first element matching selector within sel,
// and whether there was one.
func text(sel *goquery.Selection, selector string) (string, bool) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(found.Text()), true
}
