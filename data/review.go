package data

// A Review is one critic's take on one album, as scraped from the album's
// detail page. Every field is kept verbatim.
type Review struct {
	// like "Pitchfork"
	Publication string

	// like "90". Not validated: some publications leave it blank or use
	// letter grades.
	Score string

	Quote string

	// like "Mar 31, 2023". Not normalized.
	Date string
}

// A Row is a Review with its album's metadata copied in. Rows are what we
// persist.
type Row struct {
	Review

	Album       string
	Artist      string
	ReleaseDate string

	// Where the review was found. Archived, but not part of the table.
	AlbumURL string
}

// Columns is the header of the output table, in order.
var Columns = []string{
	"Publication",
	"Score",
	"Quote",
	"Date",
	"Album",
	"Artist",
	"Release Date",
}

// Merge combines a review with the album it was found on.
func Merge(album Album, review Review) Row {
	return Row{
		Review:      review,
		Album:       album.Title,
		Artist:      album.Artist,
		ReleaseDate: album.FormattedReleaseDate(),
		AlbumURL:    album.URL,
	}
}

// Record renders the row in Columns order.
func (r Row) Record() []string {
	return []string{
		r.Publication,
		r.Score,
		r.Quote,
		r.Date,
		r.Album,
		r.Artist,
		r.ReleaseDate,
	}
}
