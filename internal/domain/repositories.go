package domain

import (
	"context"
)

// CatalogRepository provides typed access to the remote movie catalog.
// Pages are 1-based.
type CatalogRepository interface {
	// ListPopular returns a page of popular movies
	ListPopular(ctx context.Context, page int) (CatalogPage, error)

	// GetDetails returns a single movie
	GetDetails(ctx context.Context, id int) (CatalogItem, error)

	// Search performs a free-text title search. Genre filters are not supported.
	Search(ctx context.Context, query string, page int) (CatalogPage, error)

	// ListGenres returns the movie genre catalogue
	ListGenres(ctx context.Context) ([]Genre, error)

	// Discover lists movies by popularity, filtered by genre unless genreID is AllGenres.ID
	Discover(ctx context.Context, genreID int, page int) (CatalogPage, error)
}

// KeyValueStore is a durable byte store. Get returns (nil, nil) for a missing key.
type KeyValueStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// ImageFetcher retrieves raw image bytes by absolute URL
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}
