package model

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when no stored posting has the requested id.
	ErrJobNotFound = errors.New("job not found")
	// ErrUnknownSource is returned for a source name we have no crawler for.
	ErrUnknownSource = errors.New("unknown source")
	// ErrEnrichmentRunning is returned when a detail run is started while one is active.
	ErrEnrichmentRunning = errors.New("detail enrichment already running")
)

// HTTPError wraps a non-2xx response so callers can inspect the status.
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
