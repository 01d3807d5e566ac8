// Package service orchestrates crawling: it drives each source's crawler,
// adapts and persists the results and records every run in the crawl log.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobscout/internal/model"
)

// JobService owns the crawl pipeline for every configured source:
// build site → fetch → adapt → persist raw → log → notify.
type JobService struct {
	sites    SiteFactory
	store    model.JobStore
	notifier model.Notifier
	sources  []model.Source
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option customises a JobService.
type Option func(*JobService)

// WithSources limits CrawlAllSites to sources, in the given order.
func WithSources(sources []model.Source) Option {
	return func(s *JobService) {
		if len(sources) > 0 {
			s.sources = sources
		}
	}
}

// WithClock replaces time.Now for crawl log timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *JobService) { s.now = now }
}

// NewJobService creates a service wired with all its dependencies.
func NewJobService(
	sites SiteFactory,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *JobService {
	s := &JobService{
		sites:    sites,
		store:    store,
		notifier: notifier,
		sources:  model.AllSources,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CrawlSite crawls one source, persists its raw dump and returns the adapted
// postings. It does not touch the normalized collection. The site is closed
// on every path.
func (s *JobService) CrawlSite(ctx context.Context, source model.Source, opts model.CrawlOptions) ([]model.JobPosting, error) {
	log := model.CrawlLog{
		ID:        s.newID(),
		Source:    source,
		StartedAt: s.now(),
		Status:    model.CrawlRunning,
	}
	s.saveLog(log)

	site, err := s.sites.NewSite(source)
	if err != nil {
		s.finish(&log, model.CrawlFailed, err)
		return nil, fmt.Errorf("crawling %s: %w", source, err)
	}
	defer func() {
		if err := site.Close(); err != nil {
			s.logger.Warn("closing site failed", "source", source, "error", err)
		}
	}()

	res, crawlErr := site.Crawl(ctx, opts)
	log.TotalItems = len(res.Jobs)
	log.PagesScraped = res.Pages

	if crawlErr != nil && len(res.Jobs) == 0 {
		s.finish(&log, model.CrawlFailed, crawlErr)
		return nil, fmt.Errorf("crawling %s: %w", source, crawlErr)
	}

	if err := s.store.SaveRaw(source, res.Raw); err != nil {
		s.finish(&log, model.CrawlFailed, err)
		return nil, fmt.Errorf("crawling %s: %w", source, err)
	}

	status := model.CrawlSuccess
	if crawlErr != nil {
		status = model.CrawlPartial
		s.logger.Warn("crawl cut short, keeping collected items",
			"source", source,
			"items", len(res.Jobs),
			"error", crawlErr,
		)
	}
	s.finish(&log, status, crawlErr)

	s.logger.Info("crawled site",
		"source", source,
		"items", len(res.Jobs),
		"pages", res.Pages,
		"status", status,
	)
	return res.Jobs, nil
}

// CrawlAllSites crawls every configured source strictly one after another and
// overwrites the normalized collection with the concatenated results. A
// failing source is logged and skipped; when every source fails, or the
// context ends mid-run, the stored collection is left untouched.
func (s *JobService) CrawlAllSites(ctx context.Context, opts model.CrawlOptions) ([]model.JobPosting, error) {
	var (
		all  []model.JobPosting
		errs []error
		ok   int
	)
	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("crawling all sites: %w", err)
		}
		jobs, err := s.CrawlSite(ctx, source, opts)
		if err != nil {
			s.logger.Error("site crawl failed", "source", source, "error", err)
			errs = append(errs, err)
			continue
		}
		ok++
		all = append(all, jobs...)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("crawling all sites: %w", err)
	}
	if ok == 0 {
		return nil, fmt.Errorf("crawling all sites: %w", errors.Join(errs...))
	}
	if all == nil {
		all = []model.JobPosting{}
	}
	if err := s.store.SaveJobs(all); err != nil {
		return nil, fmt.Errorf("saving normalized jobs: %w", err)
	}

	s.logger.Info("crawled all sites",
		"sources", len(s.sources),
		"failed", len(errs),
		"total", len(all),
	)
	return all, nil
}

// ReplaceSource swaps the records of source in the normalized collection for
// jobs, keeping every other source's records and their order.
func (s *JobService) ReplaceSource(source model.Source, jobs []model.JobPosting) error {
	stored, err := s.store.LoadJobs()
	if err != nil {
		return fmt.Errorf("loading normalized jobs: %w", err)
	}
	merged := make([]model.JobPosting, 0, len(stored)+len(jobs))
	for _, j := range stored {
		if j.Source != source {
			merged = append(merged, j)
		}
	}
	merged = append(merged, jobs...)
	if err := s.store.SaveJobs(merged); err != nil {
		return fmt.Errorf("saving normalized jobs: %w", err)
	}
	return nil
}

// GetJobs returns the stored postings that match filter; a nil filter matches all.
func (s *JobService) GetJobs(filter model.JobFilter) ([]model.JobPosting, error) {
	jobs, err := s.store.LoadJobs()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return jobs, nil
	}
	matched := make([]model.JobPosting, 0, len(jobs))
	for _, j := range jobs {
		if filter.Match(j) {
			matched = append(matched, j)
		}
	}
	return matched, nil
}

func (s *JobService) GetJob(id string) (model.JobPosting, error) {
	return s.store.GetJob(id)
}

func (s *JobService) CrawlLogs() ([]model.CrawlLog, error) {
	return s.store.LoadCrawlLogs()
}

func (s *JobService) ClearAllData() error {
	return s.store.ClearAll()
}

func (s *JobService) finish(log *model.CrawlLog, status model.CrawlStatus, err error) {
	log.Finish(s.now(), status, err)
	s.saveLog(*log)

	snapshot := *log
	if nerr := s.notifier.Notify(model.Event{Type: model.EventCrawlFinished, Log: &snapshot}); nerr != nil {
		s.logger.Warn("crawl notification failed", "source", log.Source, "error", nerr)
	}
}

// saveLog records progress; a failing log write never fails the crawl.
func (s *JobService) saveLog(log model.CrawlLog) {
	if err := s.store.SaveCrawlLog(log); err != nil {
		s.logger.Warn("saving crawl log failed", "source", log.Source, "id", log.ID, "error", err)
	}
}
