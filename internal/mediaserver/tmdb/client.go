package tmdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/cinelist/internal/domain"
)

// Client implements domain.CatalogRepository on top of a Gateway.
// Each operation is exactly one gateway call; gateway errors pass through unchanged.
type Client struct {
	gateway *Gateway
	logger  *slog.Logger
}

// NewClient creates a catalog client
func NewClient(gateway *Gateway, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{gateway: gateway, logger: logger}
}

// ListPopular returns a page of popular movies
func (c *Client) ListPopular(ctx context.Context, page int) (domain.CatalogPage, error) {
	return c.fetchPage(ctx, PopularMoviesEndpoint(page))
}

// GetDetails returns a single movie
func (c *Client) GetDetails(ctx context.Context, id int) (domain.CatalogItem, error) {
	var dto MovieDTO
	if err := c.gateway.Do(ctx, MovieDetailsEndpoint(id), &dto); err != nil {
		return domain.CatalogItem{}, err
	}
	return MapMovie(dto), nil
}

// Search performs a title search
func (c *Client) Search(ctx context.Context, query string, page int) (domain.CatalogPage, error) {
	return c.fetchPage(ctx, SearchMoviesEndpoint(query, page))
}

// ListGenres returns the genre catalogue
func (c *Client) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	var resp GenreListResponseDTO
	if err := c.gateway.Do(ctx, MovieGenresEndpoint(), &resp); err != nil {
		return nil, err
	}
	genres := MapGenres(resp.Genres)
	c.logger.Debug("loaded genres", "count", len(genres))
	return genres, nil
}

// Discover lists movies by popularity, optionally filtered by genre
func (c *Client) Discover(ctx context.Context, genreID int, page int) (domain.CatalogPage, error) {
	return c.fetchPage(ctx, DiscoverMoviesEndpoint(genreID, page))
}

// VerifyToken checks the configured token against the authentication endpoint
func (c *Client) VerifyToken(ctx context.Context) error {
	var resp AuthenticationDTO
	if err := c.gateway.Do(ctx, AuthenticationEndpoint(), &resp); err != nil {
		return err
	}
	if !*resp.Success {
		return fmt.Errorf("token rejected: %s", resp.StatusMessage)
	}
	return nil
}

func (c *Client) fetchPage(ctx context.Context, ep Endpoint) (domain.CatalogPage, error) {
	var resp MovieListResponseDTO
	if err := c.gateway.Do(ctx, ep, &resp); err != nil {
		return domain.CatalogPage{}, err
	}
	page := MapPage(resp)
	c.logger.Debug("loaded page", "path", ep.Path, "page", page.Page, "totalPages", page.TotalPages, "count", len(page.Items))
	return page, nil
}
