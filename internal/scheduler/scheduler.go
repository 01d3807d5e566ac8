package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one unit of work run every cycle.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler owns the main loop: ticks on an interval and runs each task sequentially.
type Scheduler struct {
	tasks    []Task
	interval time.Duration
	pause    time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs tasks every interval, waiting
// pause between consecutive tasks of the same cycle.
func NewScheduler(tasks []Task, interval, pause time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		pause:    pause,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then waits interval after
// each cycle ends. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"tasks", len(s.tasks),
	)

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runCycle(ctx)
		}
	}
}

// runCycle runs every task in order. A failing task is logged and the next one still runs.
func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	for i, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}

		if err := t.Run(ctx); err != nil {
			s.logger.Error("task failed",
				"task", t.Name,
				"error", err,
			)
		}

		if i < len(s.tasks)-1 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pause):
			}
		}
	}
	s.logger.Info("cycle complete", "elapsed", time.Since(start).Round(time.Millisecond).String())
}
