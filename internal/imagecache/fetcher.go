package imagecache

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
)

const maxImageBytes = 20 << 20

// HTTPFetcher downloads raw image bytes
type HTTPFetcher struct {
	httpc *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{httpc: &http.Client{Timeout: timeout}}
}

// WithHTTPClient replaces the underlying HTTP client
func (f *HTTPFetcher) WithHTTPClient(c *http.Client) *HTTPFetcher {
	if c != nil {
		f.httpc = c
	}
	return f
}

// FetchImage implements domain.ImageFetcher
func (f *HTTPFetcher) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.NetworkError{Kind: domain.ErrBadURL, Err: err}
	}

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, domain.NewRequestFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.NewServerError(resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, domain.NewRequestFailed(err)
	}
	return data, nil
}
