package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a provider that has no backend to talk to.
var ErrNotConfigured = errors.New("AI backend is not configured")

// StreamProvider sends a prompt to a text-generation backend and streams the
// response. onChunk receives every non-empty fragment in arrival order. A
// stream that ends without the backend's completion marker is an error.
type StreamProvider interface {
	Stream(ctx context.Context, prompt string, onChunk func(string)) error
}

// Unconfigured is a provider that always fails with ErrNotConfigured.
type Unconfigured struct{}

var _ StreamProvider = Unconfigured{}

func (Unconfigured) Stream(context.Context, string, func(string)) error {
	return ErrNotConfigured
}
