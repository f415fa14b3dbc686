package data

import "time"

// ReleaseDateFormat is how an album's release date is written into the
// output table.
const ReleaseDateFormat = "2006-01-02"

// Albums are scraped from the release-date listing. They only live for the
// duration of a run: we use them to decide which detail pages to visit, then
// copy their metadata into each Row.
type Album struct {
	// like "https://www.metacritic.com/music/the-record/boygenius"
	URL string

	Title  string
	Artist string

	// Midnight, local time, on the day the listing says the album came out.
	ReleaseDate time.Time
}

// FormattedReleaseDate is the release date as it appears in the output.
func (a Album) FormattedReleaseDate() string {
	return a.ReleaseDate.Format(ReleaseDateFormat)
}

// ReleasedAfter reports whether the album came out strictly after t.
func (a Album) ReleasedAfter(t time.Time) bool {
	return a.ReleaseDate.After(t)
}
