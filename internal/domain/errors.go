package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations
var (
	// ErrBadURL indicates a request URL could not be built
	ErrBadURL = errors.New("bad url")

	// ErrRequestFailed indicates a transport-level failure
	ErrRequestFailed = errors.New("request failed")

	// ErrInvalidResponse indicates the response had no usable status line
	ErrInvalidResponse = errors.New("invalid response")

	// ErrServerError indicates a non-2xx status from the remote API
	ErrServerError = errors.New("server error")

	// ErrDecodingFailed indicates the payload did not match the expected shape
	ErrDecodingFailed = errors.New("decoding failed")

	// ErrInvalidURL indicates an image URL was empty or malformed
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotConfigured indicates the API token is missing
	ErrNotConfigured = errors.New("api token is not configured")
)

// NetworkError carries the failure kind plus diagnostic detail.
// errors.Is matches both the kind sentinel and the wrapped cause.
type NetworkError struct {
	Kind       error
	StatusCode int    // ServerError only
	Body       []byte // ServerError only
	Err        error  // underlying cause, may be nil
}

func (e *NetworkError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrServerError):
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *NetworkError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewRequestFailed wraps a transport error
func NewRequestFailed(cause error) error {
	return &NetworkError{Kind: ErrRequestFailed, Err: cause}
}

// NewServerError records a non-2xx response
func NewServerError(status int, body []byte) error {
	return &NetworkError{Kind: ErrServerError, StatusCode: status, Body: body}
}

// NewDecodingFailed wraps a decode error
func NewDecodingFailed(cause error) error {
	return &NetworkError{Kind: ErrDecodingFailed, Err: cause}
}

// UserMessage converts an error into the single line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return "An unexpected error occurred: " + err.Error()
	}
	switch {
	case errors.Is(err, ErrRequestFailed):
		return "Failed to fetch movies: the server could not be reached."
	case errors.Is(err, ErrServerError):
		return fmt.Sprintf("Failed to fetch movies: server returned %d.", netErr.StatusCode)
	case errors.Is(err, ErrDecodingFailed):
		return "Failed to fetch movies: the response could not be read."
	default:
		return "Failed to fetch movies: " + netErr.Error()
	}
}
