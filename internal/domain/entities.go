package domain

import (
	"slices"
	"strconv"
	"time"
)

// Image sizes used when building poster and backdrop URLs
const (
	PosterSize   = "w500"
	BackdropSize = "w780"
)

// Placeholders used when the remote payload omits a field
const (
	UntitledPlaceholder = "N/A"
	OverviewPlaceholder = "No overview available."
)

// CatalogItem is a single browsable movie.
// IsFavorite is never sourced from the remote API; it is stamped from the
// favorites store every time a list is materialized.
type CatalogItem struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	ReleaseDate  time.Time `json:"releaseDate,omitempty"` // Zero when absent or unparsable
	VoteAverage  float64   `json:"voteAverage"`           // 0.0 - 10.0
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	GenreIDs     []int     `json:"genreIds,omitempty"`
	IsFavorite   bool      `json:"isFavorite"`
}

// Equal compares every field, including IsFavorite.
func (m CatalogItem) Equal(o CatalogItem) bool {
	return m.ID == o.ID &&
		m.Title == o.Title &&
		m.Overview == o.Overview &&
		m.ReleaseDate.Equal(o.ReleaseDate) &&
		m.VoteAverage == o.VoteAverage &&
		m.PosterPath == o.PosterPath &&
		m.BackdropPath == o.BackdropPath &&
		slices.Equal(m.GenreIDs, o.GenreIDs) &&
		m.IsFavorite == o.IsFavorite
}

// HasReleaseDate reports whether a release date was parsed
func (m CatalogItem) HasReleaseDate() bool {
	return !m.ReleaseDate.IsZero()
}

// Year returns the release year as a string, or "" when unknown
func (m CatalogItem) Year() string {
	if !m.HasReleaseDate() {
		return ""
	}
	return strconv.Itoa(m.ReleaseDate.Year())
}

// PosterURL returns the absolute poster URL, or "" when the item has no poster.
func (m CatalogItem) PosterURL(imageBaseURL string) string {
	return imageURL(imageBaseURL, PosterSize, m.PosterPath)
}

// BackdropURL returns the absolute backdrop URL, or "" when the item has no backdrop.
func (m CatalogItem) BackdropURL(imageBaseURL string) string {
	return imageURL(imageBaseURL, BackdropSize, m.BackdropPath)
}

func imageURL(base, size, path string) string {
	if path == "" || base == "" {
		return ""
	}
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + size + path
}

// ParseReleaseDate parses a "YYYY-MM-DD" date. Invalid input yields the zero time.
func ParseReleaseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Genre is a movie category
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AllGenres is the "no filter" sentinel. It is never sent to the remote API.
var AllGenres = Genre{ID: 0, Name: "All Genres"}

// IsAll reports whether g is the "no filter" sentinel
func (g Genre) IsAll() bool {
	return g.ID == AllGenres.ID
}

// CatalogPage is one page of a paginated list endpoint
type CatalogPage struct {
	Page         int
	TotalPages   int
	TotalResults int
	Items        []CatalogItem
}
