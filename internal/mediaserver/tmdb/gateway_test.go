package tmdb

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/cinelist/internal/adapter"
	"github.com/mmcdole/cinelist/internal/domain"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestGateway(rt roundTripFunc) *Gateway {
	return NewGateway("https://api.example.com/3", "secret", adapter.NullLogger()).
		WithHTTPClient(&http.Client{Transport: rt})
}

func TestGateway_SuccessDecodesAndAuthenticates(t *testing.T) {
	var captured *http.Request
	gw := newTestGateway(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"genres":[{"id":28,"name":"Action"}]}`), nil
	})

	var out GenreListResponseDTO
	err := gw.Do(context.Background(), MovieGenresEndpoint(), &out)
	require.NoError(t, err)

	require.Len(t, out.Genres, 1)
	assert.Equal(t, 28, out.Genres[0].ID)
	assert.Equal(t, "Bearer secret", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
	assert.Equal(t, "/3/genre/movie/list", captured.URL.Path)
	assert.Equal(t, "en", captured.URL.Query().Get("language"))
}

func TestGateway_ErrorClassification(t *testing.T) {
	transportErr := errors.New("connection refused")

	tests := []struct {
		name   string
		rt     roundTripFunc
		kind   error
		status int
	}{
		{
			name: "transport failure",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, transportErr
			},
			kind: domain.ErrRequestFailed,
		},
		{
			name: "no status line",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(0, ``), nil
			},
			kind: domain.ErrInvalidResponse,
		},
		{
			name: "server error",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusInternalServerError, `{"status_message":"boom"}`), nil
			},
			kind:   domain.ErrServerError,
			status: http.StatusInternalServerError,
		},
		{
			name: "unauthorized is a server error",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{}`), nil
			},
			kind:   domain.ErrServerError,
			status: http.StatusUnauthorized,
		},
		{
			name: "malformed json",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"page":`), nil
			},
			kind: domain.ErrDecodingFailed,
		},
		{
			name: "wrong shape",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"invalid_json": true}`), nil
			},
			kind: domain.ErrDecodingFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(tt.rt)
			var out MovieListResponseDTO
			err := gw.Do(context.Background(), PopularMoviesEndpoint(1), &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var netErr *domain.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, tt.status, netErr.StatusCode)
		})
	}
}

func TestGateway_RequestFailedKeepsCause(t *testing.T) {
	cause := errors.New("no route to host")
	gw := newTestGateway(func(*http.Request) (*http.Response, error) {
		return nil, cause
	})

	err := gw.Do(context.Background(), MovieDetailsEndpoint(1), nil)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
	assert.ErrorIs(t, err, cause)
}

func TestGateway_ServerErrorKeepsBody(t *testing.T) {
	gw := newTestGateway(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"status_code":34}`), nil
	})

	err := gw.Do(context.Background(), MovieDetailsEndpoint(999), nil)
	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, `{"status_code":34}`, string(netErr.Body))
}

func TestGateway_BadBaseURL(t *testing.T) {
	called := false
	gw := NewGateway("not a url", "secret", adapter.NullLogger()).
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			called = true
			return jsonResponse(http.StatusOK, `{}`), nil
		})})

	err := gw.Do(context.Background(), PopularMoviesEndpoint(1), nil)
	assert.ErrorIs(t, err, domain.ErrBadURL)
	assert.False(t, called)
}

func TestGateway_NoRetries(t *testing.T) {
	calls := 0
	gw := newTestGateway(func(*http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, ``), nil
	})

	err := gw.Do(context.Background(), PopularMoviesEndpoint(1), nil)
	assert.ErrorIs(t, err, domain.ErrServerError)
	assert.Equal(t, 1, calls)
}

func TestGateway_RateLimitHonorsContext(t *testing.T) {
	gw := newTestGateway(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	}).WithRateLimit(0.001)

	require.NoError(t, gw.Do(context.Background(), MovieDetailsEndpoint(1), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gw.Do(ctx, MovieDetailsEndpoint(1), nil)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
}
