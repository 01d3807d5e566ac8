package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keys used for the default delays.
const (
	KeyWanted     = "wanted"
	KeySaramin    = "saramin"
	KeyJumpit     = "jumpit"
	KeyEnrichment = "enrichment"
)

// DefaultDelays are the polite gaps between consecutive requests per key.
// API-paginated sources tolerate 100ms; markup pages and detail runs get 500ms.
var DefaultDelays = map[string]time.Duration{
	KeyWanted:     100 * time.Millisecond,
	KeySaramin:    500 * time.Millisecond,
	KeyJumpit:     100 * time.Millisecond,
	KeyEnrichment: 500 * time.Millisecond,
}

// Throttle enforces a minimum delay between requests sharing the same key.
// The first request for a key never waits, so a crawler that waits before
// every page after the first never sleeps after its final page.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
	fallback time.Duration
}

// NewThrottle creates a throttle. overrides replace entries of DefaultDelays;
// keys found in neither map use fallback.
func NewThrottle(fallback time.Duration, overrides map[string]time.Duration) *Throttle {
	delays := make(map[string]time.Duration, len(DefaultDelays)+len(overrides))
	for k, d := range DefaultDelays {
		delays[k] = d
	}
	for k, d := range overrides {
		delays[k] = d
	}
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		delays:   delays,
		fallback: fallback,
	}
}

// DelayFor returns the configured gap for key.
func (t *Throttle) DelayFor(key string) time.Duration {
	if d, ok := t.delays[key]; ok {
		return d
	}
	return t.fallback
}

// Wait blocks until a request for key may proceed.
// Returns an error if the context is cancelled while waiting.
func (t *Throttle) Wait(ctx context.Context, key string) error {
	if err := t.limiter(key).Wait(ctx); err != nil {
		return fmt.Errorf("throttle wait for %s: %w", key, err)
	}
	return nil
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limiters[key]; ok {
		return l
	}

	limit := rate.Inf
	if d := t.DelayFor(key); d > 0 {
		limit = rate.Every(d)
	}
	l := rate.NewLimiter(limit, 1)
	t.limiters[key] = l
	return l
}
