package mediaserver

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/mediaserver/tmdb"
)

// CatalogSource is what the rest of the application needs from a catalog backend
type CatalogSource interface {
	domain.CatalogRepository
}

// NewClient creates the catalog client from configuration.
func NewClient(cfg *adapter.Config, logger *slog.Logger) (*tmdb.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if cfg.API.Token == "" {
		return nil, domain.ErrNotConfigured
	}
	return newClient(cfg.API, cfg.API.Token, logger), nil
}

func newClient(api adapter.APIConfig, token string, logger *slog.Logger) *tmdb.Client {
	if logger == nil {
		logger = slog.Default()
	}
	gateway := tmdb.NewGateway(api.BaseURL, token, logger).
		WithHTTPClient(&http.Client{Timeout: api.Timeout}).
		WithRateLimit(api.RequestsPerSecond)
	return tmdb.NewClient(gateway, logger)
}
