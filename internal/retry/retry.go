package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Backoff computes capped exponential delays between attempts.
type Backoff struct {
	Base time.Duration // delay after the first failure
	Max  time.Duration // upper bound for any single delay
}

// DefaultBackoff waits 1s, 2s, 4s, 8s, then 10s for every later attempt.
var DefaultBackoff = Backoff{Base: time.Second, Max: 10 * time.Second}

// Delay returns min(Base * 2^attempt, Max) for the zero-based attempt that just failed.
func (b Backoff) Delay(attempt int) time.Duration {
	delay := b.Base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if b.Max > 0 && delay >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}
	return delay
}

// Do calls fn until it succeeds or maxRetries retries have been spent
// (maxRetries+1 attempts in total). After exhaustion the last error is returned
// unchanged. Once ctx is done no further attempt is made.
func Do(ctx context.Context, maxRetries int, backoff Backoff, logger *slog.Logger, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// The caller gave up; the failure is most likely the cancellation itself.
		if ctx.Err() != nil {
			return err
		}
		if attempt >= maxRetries {
			return lastErr
		}

		delay := backoff.Delay(attempt)
		if logger != nil {
			logger.Warn("retrying after transient error",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"delay", delay,
				"error", lastErr,
			)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
}
