package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fastBackoff = Backoff{Base: time.Millisecond, Max: 5 * time.Millisecond}

func TestBackoff_DelaySequence(t *testing.T) {
	b := DefaultBackoff
	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for attempt, w := range want {
		if got := b.Delay(attempt); got != w {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestBackoff_LargeAttemptStaysCapped(t *testing.T) {
	if got := DefaultBackoff.Delay(80); got != 10*time.Second {
		t.Errorf("Delay(80) = %v, want 10s", got)
	}
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, fastBackoff, discardLogger(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, fastBackoff, discardLogger(), func(context.Context) error {
		calls++
		if calls == 1 {
			return &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDo_GivesUpAfterMaxRetriesWithLastError(t *testing.T) {
	calls := 0
	var last error
	err := Do(context.Background(), 2, fastBackoff, discardLogger(), func(context.Context) error {
		calls++
		last = &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
		return last
	})
	// 1 initial + 2 retries = 3
	if calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", calls)
	}
	if err != last {
		t.Fatalf("expected the last error unchanged, got %v", err)
	}
}

func TestDo_ZeroRetriesMakesOneAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 0, fastBackoff, discardLogger(), func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, 3, Backoff{Base: time.Second, Max: time.Second}, discardLogger(), func(context.Context) error {
		calls++
		// Cancel after the first failure so the backoff sleep is interrupted.
		cancel()
		return errors.New("network down")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, 3, Backoff{Base: time.Second, Max: time.Second}, discardLogger(), func(context.Context) error {
		calls++
		return errors.New("network down")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
