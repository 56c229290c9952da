// Package review defines the harvested review record.
package review

// NotAvailable is the sentinel stored for optional fields that are
// missing from a page. Required fields never carry it.
const NotAvailable = "N/A"

// Review is a single harvested album review. Artist and Album form the
// natural key; a stored review is never updated once written.
type Review struct {
	Artist       string  `db:"artist" json:"artist" yaml:"artist"`
	Album        string  `db:"album" json:"album" yaml:"album"`
	YearReleased int     `db:"year_released" json:"year_released" yaml:"year_released"`
	Rating       float64 `db:"rating" json:"rating" yaml:"rating"`
	SmallText    string  `db:"small_text" json:"small_text" yaml:"small_text"`
	Review       string  `db:"review" json:"review" yaml:"review"`
	Reviewer     string  `db:"reviewer" json:"reviewer" yaml:"reviewer"`
	Genre        string  `db:"genre" json:"genre" yaml:"genre"`
	Label        string  `db:"label" json:"label" yaml:"label"`
	Reviewed     string  `db:"reviewed" json:"reviewed" yaml:"reviewed"`
	AlbumArtURL  string  `db:"album_art_url" json:"album_art_url" yaml:"album_art_url"`
}
