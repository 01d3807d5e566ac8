// Package app is the command surface of jobscout: every user-facing
// operation goes through App, which owns the long-lived services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/service"
)

// ChatResult is the outcome of one chat turn. On failure Error is set and
// nothing was persisted.
type ChatResult struct {
	Success  bool
	Response string
	Error    string
	Job      *model.JobPosting
}

// App wires the crawl, enrichment and chat services together.
type App struct {
	jobs        *service.JobService
	enricher    *enrich.Enricher
	chat        *ai.ChatSession
	store       model.JobStore
	notifier    model.Notifier
	logger      *slog.Logger
	chatTimeout time.Duration

	mu   sync.Mutex
	run  *enrichmentRun // active run, nil when idle
	last *enrichmentRun // most recent run, finished or not
}

type enrichmentRun struct {
	cancel  context.CancelFunc
	done    chan struct{}
	summary enrich.Summary
	err     error
}

// New creates an App. The store is closed by Close.
func New(
	jobs *service.JobService,
	enricher *enrich.Enricher,
	chat *ai.ChatSession,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *App {
	return &App{
		jobs:     jobs,
		enricher: enricher,
		chat:     chat,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CrawlSource crawls one source and returns its postings. The normalized
// collection is only touched when save is set, and then only that source's
// records are replaced.
func (a *App) CrawlSource(ctx context.Context, source model.Source, opts model.CrawlOptions, save bool) ([]model.JobPosting, error) {
	jobs, err := a.jobs.CrawlSite(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	if save {
		if err := a.jobs.ReplaceSource(source, jobs); err != nil {
			return jobs, err
		}
	}
	return jobs, nil
}

// CrawlAll crawls every configured source in sequence and overwrites the
// normalized collection.
func (a *App) CrawlAll(ctx context.Context, opts model.CrawlOptions) ([]model.JobPosting, error) {
	return a.jobs.CrawlAllSites(ctx, opts)
}

// ListJobs returns the stored postings matching filter; nil matches all.
func (a *App) ListJobs(filter model.JobFilter) ([]model.JobPosting, error) {
	return a.jobs.GetJobs(filter)
}

// GetJob returns one stored posting.
func (a *App) GetJob(id string) (model.JobPosting, error) {
	return a.jobs.GetJob(id)
}

// ClearAll removes every raw dump, the normalized collection and the crawl log.
func (a *App) ClearAll() error {
	if a.EnrichmentRunning() {
		return model.ErrEnrichmentRunning
	}
	return a.jobs.ClearAllData()
}

// CrawlLogs returns the crawl run history, newest first.
func (a *App) CrawlLogs() ([]model.CrawlLog, error) {
	return a.jobs.CrawlLogs()
}

// StartEnrichment starts a detail run in the background and returns at once.
// Progress is delivered through the notifier. Cancelling ctx or calling
// StopEnrichment stops the run before its next record.
func (a *App) StartEnrichment(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run != nil {
		return model.ErrEnrichmentRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &enrichmentRun{cancel: cancel, done: make(chan struct{})}
	a.run, a.last = run, run

	go func() {
		defer cancel()
		sum, err := a.enricher.Run(runCtx)

		a.mu.Lock()
		run.summary, run.err = sum, err
		a.run = nil
		a.mu.Unlock()
		close(run.done)
	}()
	return nil
}

// StopEnrichment requests the active run to stop. It is a no-op when idle.
func (a *App) StopEnrichment() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.run != nil {
		a.logger.Info("stopping detail enrichment")
		a.run.cancel()
	}
}

// EnrichmentRunning reports whether a detail run is active.
func (a *App) EnrichmentRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.run != nil
}

// Wait blocks until the most recent detail run finishes and returns its
// summary. It returns immediately when no run was ever started.
func (a *App) Wait(ctx context.Context) (enrich.Summary, error) {
	a.mu.Lock()
	run := a.last
	a.mu.Unlock()
	if run == nil {
		return enrich.Summary{}, nil
	}

	select {
	case <-run.done:
	case <-ctx.Done():
		return enrich.Summary{}, ctx.Err()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return run.summary, run.err
}

// Enrich runs a detail pass and waits for it to finish.
func (a *App) Enrich(ctx context.Context) (enrich.Summary, error) {
	if err := a.StartEnrichment(ctx); err != nil {
		return enrich.Summary{}, err
	}
	return a.Wait(context.WithoutCancel(ctx))
}

// LoadDetail fetches and stores the detail of one posting.
func (a *App) LoadDetail(ctx context.Context, jobID string) (model.JobPosting, error) {
	return a.enricher.Load(ctx, jobID)
}

// SendChatTurn asks prompt about the posting jobID. Each streamed fragment is
// emitted as a chat.chunk event keyed by jobID.
func (a *App) SendChatTurn(ctx context.Context, jobID, prompt string) ChatResult {
	if a.chatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.chatTimeout)
		defer cancel()
	}

	turn, err := a.chat.Send(ctx, jobID, prompt, func(chunk string) {
		if nerr := a.notifier.Notify(model.Event{Type: model.EventChatChunk, JobID: jobID, Chunk: chunk}); nerr != nil {
			a.logger.Warn("chat chunk notification failed", "job_id", jobID, "error", nerr)
		}
	})
	if err != nil {
		a.logger.Error("chat turn failed", "job_id", jobID, "error", err)
		return ChatResult{Error: chatErrorMessage(err)}
	}
	return ChatResult{Success: true, Response: turn.Response, Job: &turn.Job}
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrJobNotFound):
		return "채용공고를 찾을 수 없습니다."
	case errors.Is(err, ai.ErrNotConfigured):
		return "AI 설정이 없습니다. OLLAMA_BASE_URL과 OLLAMA_MODEL을 설정해주세요."
	case errors.Is(err, ai.ErrEmptyResponse):
		return "AI 응답이 비어 있습니다."
	default:
		return fmt.Sprintf("AI 요청 실패: %v", err)
	}
}

// MarkChatRead records that the conversation of jobID was read.
func (a *App) MarkChatRead(jobID string) (model.JobPosting, error) {
	return a.chat.MarkRead(jobID)
}

// Close stops any detail run, waits for it and closes the store.
func (a *App) Close() error {
	a.StopEnrichment()
	if _, err := a.Wait(context.Background()); err != nil {
		a.logger.Warn("detail enrichment ended with error", "error", err)
	}
	return a.store.Close()
}
