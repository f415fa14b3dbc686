package metacritic

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/reviews/data"
)

// ReleaseDateLayout is how the listing writes release dates, like
// "March 3, 2024".
const ReleaseDateLayout = "January 2, 2006"

// FetchListingPage requests one page of the album listing and returns the
// albums on it, plus the absolute URL of the next page, or "" if this is the
// last one.
func (src *Source) FetchListingPage(ctx context.Context, pageURL string) ([]data.Album, string, error) {
	doc, err := src.fetcher.FetchHTML(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}
	return ParseListing(doc, pageURL)
}

// ParseListing extracts albums and the next-page link from a listing page
// that was fetched from pageURL. Entries without a detail link are skipped.
func ParseListing(doc *goquery.Document, pageURL string) ([]data.Album, string, error) {
	var albums []data.Album
	var findErr error
	doc.Find("td.details").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		el := albumElement{sel}
		if _, ok := el.Link(); !ok {
			return true
		}
		album, err := el.Album(pageURL)
		if err != nil {
			findErr = fmt.Errorf("error reading listing entry %d on '%s': %w", i+1, pageURL, err)
			return false
		}
		albums = append(albums, album)
		return true
	})
	if findErr != nil {
		return nil, "", findErr
	}

	next, err := nextPage(doc, pageURL)
	if err != nil {
		return nil, "", err
	}
	return albums, next, nil
}

func nextPage(doc *goquery.Document, pageURL string) (string, error) {
	href, found := doc.Find("span.flipper.next a[href]").First().Attr("href")
	if !found || strings.TrimSpace(href) == "" {
		return "", nil
	}
	return resolve(pageURL, href)
}

// An albumElement is the td for a single album on the listing page.
type albumElement struct{ *goquery.Selection }

func (el albumElement) Album(pageURL string) (data.Album, error) {
	var album data.Album
	var err error

	href, _ := el.Link()
	if album.URL, err = resolve(pageURL, href); err != nil {
		return album, err
	}
	album.Title = el.Title()
	if album.Artist, err = el.Artist(); err != nil {
		return album, err
	}
	if album.ReleaseDate, err = el.ReleaseDate(); err != nil {
		return album, err
	}
	return album, nil
}

// Link is the href of the album's title link, if it has a usable one.
func (el albumElement) Link() (string, bool) {
	href, found := el.Find("a.title[href]").First().Attr("href")
	if !found || strings.TrimSpace(href) == "" {
		return "", false
	}
	return href, true
}

func (el albumElement) Title() string {
	return strings.TrimSpace(el.Find("a.title[href]").First().Text())
}

func (el albumElement) Artist() (string, error) {
	artist, found := text(el.Selection, "div.artist")
	if !found {
		return "", fmt.Errorf("album '%s' has no artist", el.Title())
	}
	return artist, nil
}

func (el albumElement) ReleaseDate() (time.Time, error) {
	raw, found := text(el.Selection, "span")
	if !found {
		return time.Time{}, fmt.Errorf("album '%s' has no release date", el.Title())
	}
	date, err := ParseReleaseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing release date of album '%s': %w", el.Title(), err)
	}
	return date, nil
}

var ordinalRE = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)

// ParseReleaseDate parses a listing date like "March 3, 2024" or
// "March 3rd, 2024" as midnight local time.
func ParseReleaseDate(raw string) (time.Time, error) {
	normalized := strings.Join(strings.Fields(raw), " ")
	normalized = ordinalRE.ReplaceAllString(normalized, "$1")
	return time.ParseInLocation(ReleaseDateLayout, normalized, time.Local)
}
