package metacritic

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/reviews/data"
)

// FetchReviews requests an album's page and returns every critic review on
// it. Album pages go through the client's cache, if it has one.
func (src *Source) FetchReviews(ctx context.Context, albumURL string) ([]data.Review, error) {
	doc, err := src.fetcher.FetchHTMLCached(ctx, albumURL)
	if err != nil {
		return nil, err
	}
	return ParseReviews(doc, albumURL)
}

// ParseReviews extracts the critic reviews from an album page. A review
// missing any of its fields is an error.
func ParseReviews(doc *goquery.Document, albumURL string) ([]data.Review, error) {
	var reviews []data.Review
	var findErr error
	doc.Find("div.review").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		review, err := reviewElement{sel}.Review()
		if err != nil {
			findErr = fmt.Errorf("error reading review %d on '%s': %w", i+1, albumURL, err)
			return false
		}
		reviews = append(reviews, review)
		return true
	})
	if findErr != nil {
		return nil, findErr
	}
	return reviews, nil
}

// A reviewElement is the div for a single critic review on an album page.
type reviewElement struct{ *goquery.Selection }

func (el reviewElement) Review() (data.Review, error) {
	var review data.Review
	var err error
	if review.Publication, err = el.field("div.source", "publication"); err != nil {
		return review, err
	}
	if review.Score, err = el.field("div.metascore_w", "score"); err != nil {
		return review, err
	}
	if review.Quote, err = el.field("div.review_body", "quote"); err != nil {
		return review, err
	}
	if review.Date, err = el.field("div.date", "date"); err != nil {
		return review, err
	}
	return review, nil
}

func (el reviewElement) field(selector, name string) (string, error) {
	value, found := text(el.Selection, selector)
	if !found {
		return "", fmt.Errorf("review has no %s (%s)", name, selector)
	}
	return value, nil
}
