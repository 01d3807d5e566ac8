// Package enrich fills in the detail content of stored postings.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

// FetcherFactory resolves the detail fetcher of a source.
type FetcherFactory interface {
	NewDetailFetcher(source model.Source) (model.DetailFetcher, error)
}

// Summary counts what one run did.
type Summary struct {
	Total   int
	Loaded  int
	Skipped int // already had detail content
	Failed  int
	Stopped bool
}

// Enricher walks the stored collection in order and loads missing details.
type Enricher struct {
	fetchers FetcherFactory
	store    model.JobStore
	notifier model.Notifier
	throttle *ratelimit.Throttle
	logger   *slog.Logger
	now      func() time.Time
}

// NewEnricher creates an enricher wired with all its dependencies.
func NewEnricher(
	fetchers FetcherFactory,
	store model.JobStore,
	notifier model.Notifier,
	throttle *ratelimit.Throttle,
	logger *slog.Logger,
) *Enricher {
	return &Enricher{
		fetchers: fetchers,
		store:    store,
		notifier: notifier,
		throttle: throttle,
		logger:   logger,
		now:      time.Now,
	}
}

// Run loads every missing detail. Cancelling ctx stops the run before the
// next record; a fetch already in flight completes and is saved. Per-record
// failures are logged and skipped. Run emits detail.loaded per saved record
// and ends with either details.completed or details.stopped.
func (e *Enricher) Run(ctx context.Context) (Summary, error) {
	jobs, err := e.store.LoadJobs()
	if err != nil {
		return Summary{}, fmt.Errorf("loading jobs for enrichment: %w", err)
	}

	sum := Summary{Total: len(jobs)}
	fetchers := make(map[model.Source]model.DetailFetcher)
	defer func() {
		for source, f := range fetchers {
			if err := f.Close(); err != nil {
				e.logger.Warn("closing detail fetcher failed", "source", source, "error", err)
			}
		}
	}()

	for _, job := range jobs {
		if ctx.Err() != nil {
			sum.Stopped = true
			break
		}
		if job.HasDetail() {
			sum.Skipped++
			continue
		}

		f, err := e.fetcher(fetchers, job.Source)
		if err != nil {
			e.logger.Warn("no detail fetcher", "job", job.ID, "error", err)
			sum.Failed++
			continue
		}

		if err := e.throttle.Wait(ctx, ratelimit.KeyEnrichment); err != nil {
			sum.Stopped = true
			break
		}

		if err := e.enrichOne(ctx, f, job); err != nil {
			e.logger.Warn("detail enrichment failed", "job", job.ID, "error", err)
			sum.Failed++
			continue
		}
		sum.Loaded++
	}

	done := model.EventDetailsCompleted
	if sum.Stopped {
		done = model.EventDetailsStopped
	}
	e.notify(model.Event{Type: done})

	e.logger.Info("detail enrichment finished",
		"total", sum.Total,
		"loaded", sum.Loaded,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"stopped", sum.Stopped,
	)
	return sum, nil
}

func (e *Enricher) enrichOne(ctx context.Context, f model.DetailFetcher, job model.JobPosting) error {
	content := f.FetchDetail(context.WithoutCancel(ctx), job.URL)
	if content == "" || content == crawler.DetailFallback {
		return fmt.Errorf("detail unavailable for %s", job.URL)
	}

	loadedAt := e.now()
	updated, err := e.store.UpdateJob(job.ID, func(j *model.JobPosting) {
		j.DetailContent = content
		j.DetailLoadedAt = &loadedAt
	})
	if err != nil {
		return fmt.Errorf("saving detail: %w", err)
	}
	e.notify(model.Event{Type: model.EventDetailLoaded, Job: &updated})
	return nil
}

// fetcher returns the cached fetcher of source, creating it on first use.
func (e *Enricher) fetcher(cache map[model.Source]model.DetailFetcher, source model.Source) (model.DetailFetcher, error) {
	if f, ok := cache[source]; ok {
		return f, nil
	}
	f, err := e.fetchers.NewDetailFetcher(source)
	if err != nil {
		return nil, err
	}
	cache[source] = f
	return f, nil
}

func (e *Enricher) notify(ev model.Event) {
	if err := e.notifier.Notify(ev); err != nil {
		e.logger.Warn("enrichment notification failed", "event", ev.Type, "error", err)
	}
}

// Load fetches the detail of a single stored posting, regardless of whether
// it already has one, and saves it. It uses a throwaway fetcher.
func (e *Enricher) Load(ctx context.Context, jobID string) (model.JobPosting, error) {
	job, err := e.store.GetJob(jobID)
	if err != nil {
		return model.JobPosting{}, err
	}
	f, err := e.fetchers.NewDetailFetcher(job.Source)
	if err != nil {
		return model.JobPosting{}, err
	}
	defer f.Close()

	content := f.FetchDetail(ctx, job.URL)
	if content == "" || content == crawler.DetailFallback {
		return model.JobPosting{}, fmt.Errorf("detail unavailable for %s", job.URL)
	}
	loadedAt := e.now()
	updated, err := e.store.UpdateJob(job.ID, func(j *model.JobPosting) {
		j.DetailContent = content
		j.DetailLoadedAt = &loadedAt
	})
	if err != nil {
		return model.JobPosting{}, fmt.Errorf("saving detail: %w", err)
	}
	e.notify(model.Event{Type: model.EventDetailLoaded, Job: &updated})
	return updated, nil
}
