package lusha

import (
	"errors"
	"fmt"
)

// ErrInvalidSearchCriteria is returned before any network call when a query
// does not resolve to a supported lookup mode.
var ErrInvalidSearchCriteria = errors.New("invalid search criteria")

// ProviderError reports a non-2xx response from the provider.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("lusha %s failed (HTTP %d): %s", e.Endpoint, e.StatusCode, e.Body)
}

// TransportError wraps a failure to complete the HTTP round-trip.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("lusha %s request failed: %v", e.Endpoint, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
