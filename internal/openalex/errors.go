package openalex

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrNotFound indicates the author or work does not exist.
	ErrNotFound = errors.New("not found in OpenAlex")

	// ErrRateLimited indicates the API answered 429.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError is a non-success HTTP status from OpenAlex.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("OpenAlex API error (status %d): %s (%s)", e.StatusCode, e.Message, e.Path)
	}
	return fmt.Sprintf("OpenAlex API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
