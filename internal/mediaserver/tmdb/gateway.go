package tmdb

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mmcdole/cinelist/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "CineList/1.0"
)

// validator is implemented by response DTOs that need a shape check beyond
// what encoding/json enforces.
type validator interface {
	validate() error
}

// Gateway executes authenticated requests against the remote API and
// classifies the outcome. It never retries.
type Gateway struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewGateway creates a gateway for baseURL authenticating with a bearer token
func NewGateway(baseURL, token string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (g *Gateway) WithHTTPClient(c *http.Client) *Gateway {
	if c != nil {
		g.httpClient = c
	}
	return g
}

// WithRateLimit paces outgoing requests to rps per second. Zero disables pacing.
func (g *Gateway) WithRateLimit(rps float64) *Gateway {
	if rps <= 0 {
		g.limiter = nil
		return g
	}
	g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	return g
}

// Do executes ep and decodes a successful JSON body into out (if non-nil).
// Errors are *domain.NetworkError values.
func (g *Gateway) Do(ctx context.Context, ep Endpoint, out any) error {
	req, err := g.buildRequest(ctx, ep)
	if err != nil {
		return &domain.NetworkError{Kind: domain.ErrBadURL, Err: err}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return domain.NewRequestFailed(err)
		}
	}

	requestID := uuid.NewString()
	g.logger.Debug("api request", "request_id", requestID, "method", req.Method, "path", ep.Path, "query", req.URL.RawQuery)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("api request failed", "request_id", requestID, "error", err)
		return domain.NewRequestFailed(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewRequestFailed(err)
	}

	if resp.StatusCode < 100 || resp.StatusCode > 599 {
		g.logger.Error("api response has no valid status", "request_id", requestID, "status", resp.StatusCode)
		return &domain.NetworkError{Kind: domain.ErrInvalidResponse}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn("api request error", "request_id", requestID, "status", resp.StatusCode, "body", string(body))
		return domain.NewServerError(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		g.logger.Error("api decode failed", "request_id", requestID, "path", ep.Path, "error", err)
		return domain.NewDecodingFailed(err)
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			g.logger.Error("api payload invalid", "request_id", requestID, "path", ep.Path, "error", err)
			return domain.NewDecodingFailed(err)
		}
	}
	return nil
}

func (g *Gateway) buildRequest(ctx context.Context, ep Endpoint) (*http.Request, error) {
	base, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &url.Error{Op: "parse", URL: g.baseURL, Err: domain.ErrBadURL}
	}

	u := base.JoinPath(ep.Path)
	if len(ep.Query) > 0 {
		u.RawQuery = ep.Query.Encode()
	}

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}
