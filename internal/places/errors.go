package places

import (
	"errors"
	"fmt"
)

// User facing messages for the error banner
const (
	NotFoundMessage    = "No place found matching your query"
	UnavailableMessage = "Place search is currently unavailable"
	FetchFailedMessage = "Failed to fetch place information"
)

var (
	// ErrProviderUnavailable indicates the places provider is not configured or not reachable.
	ErrProviderUnavailable = errors.New("places provider is not available")

	// ErrNotFound indicates a query resolved to zero results.
	ErrNotFound = errors.New("no place found matching your query")

	// ErrTimeout indicates the provider did not answer within the HTTP client timeout.
	ErrTimeout = errors.New("places provider timed out")

	// ErrInvalidPlace indicates provider data failed validation at the client boundary.
	ErrInvalidPlace = errors.New("invalid place data from provider")
)

// AutocompleteError wraps a failure while fetching suggestions. It is logged, never surfaced.
type AutocompleteError struct {
	Input string
	Err   error
}

func (e *AutocompleteError) Error() string {
	return fmt.Sprintf("autocomplete %q: %v", e.Input, e.Err)
}

func (e *AutocompleteError) Unwrap() error { return e.Err }

// DetailsLookupError wraps a failure resolving a place id to coordinates.
type DetailsLookupError struct {
	PlaceID string
	Err     error
}

func (e *DetailsLookupError) Error() string {
	return fmt.Sprintf("place details %q: %v", e.PlaceID, e.Err)
}

func (e *DetailsLookupError) Unwrap() error { return e.Err }

// StatusError is a non-OK status reported by the provider
type StatusError struct {
	Endpoint string
	Status   string
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("places API %s: %s (%s)", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("places API %s: %s", e.Endpoint, e.Status)
}

// Message maps err to a user facing message. Only not-found and unavailable
// have their own text; every other failure, and nil, yields fallback so that
// provider statuses and transport details stay out of the shared state.
func Message(err error, fallback string) string {
	switch {
	case err == nil:
		return fallback
	case errors.Is(err, ErrNotFound):
		return NotFoundMessage
	case errors.Is(err, ErrProviderUnavailable):
		return UnavailableMessage
	default:
		return fallback
	}
}
