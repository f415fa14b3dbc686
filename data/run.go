package data

import "time"

// Runs are written to the archive once per harvest that produced rows, so we
// can look back at what each invocation did.
type Run struct {
	ID int64 `gorm:"primaryKey"`

	StartedAt  time.Time
	FinishedAt time.Time

	WatermarkBefore time.Time
	WatermarkAfter  time.Time

	Pages          int64
	AlbumsSeen     int64
	AlbumsNew      int64
	ReviewsWritten int64
}

// ArchivedReview is the archive's copy of a Row.
type ArchivedReview struct {
	ID int64 `gorm:"primaryKey"`

	RunID int64

	Publication string
	Score       string
	Quote       string
	Date        string

	Album       string
	Artist      string
	ReleaseDate string
	AlbumURL    string

	HarvestedAt time.Time
}

func (ArchivedReview) TableName() string { return "reviews" }

// Archive converts a row into its archived form.
func (r Row) Archive(harvestedAt time.Time) ArchivedReview {
	return ArchivedReview{
		Publication: r.Publication,
		Score:       r.Score,
		Quote:       r.Quote,
		Date:        r.Date,
		Album:       r.Album,
		Artist:      r.Artist,
		ReleaseDate: r.ReleaseDate,
		AlbumURL:    r.AlbumURL,
		HarvestedAt: harvestedAt,
	}
}
