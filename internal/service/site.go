package service

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/model"
)

// CrawlResult is the outcome of one source crawl.
type CrawlResult struct {
	Raw   any // the raw records, persisted as the source's dump
	Jobs  []model.JobPosting
	Pages int
}

// Site couples a source's crawler with its adapter.
type Site interface {
	// Crawl returns whatever was collected together with any error that cut the run short.
	Crawl(ctx context.Context, opts model.CrawlOptions) (CrawlResult, error)
	Close() error
}

// SiteFactory creates a fresh Site per crawl.
type SiteFactory interface {
	NewSite(source model.Source) (Site, error)
}

type pair[R any] struct {
	crawler crawler.Crawler[R]
	adapt   func(R, time.Time) model.JobPosting
	now     func() time.Time
}

func (p *pair[R]) Crawl(ctx context.Context, opts model.CrawlOptions) (CrawlResult, error) {
	raws, err := p.crawler.FetchList(ctx, opts)
	if raws == nil {
		raws = []R{}
	}
	crawledAt := p.now()
	jobs := make([]model.JobPosting, 0, len(raws))
	for _, r := range raws {
		jobs = append(jobs, p.adapt(r, crawledAt))
	}
	return CrawlResult{Raw: raws, Jobs: jobs, Pages: p.crawler.Pages()}, err
}

func (p *pair[R]) Close() error {
	return p.crawler.Close()
}

// RegistrySites builds sites from a crawler registry.
type RegistrySites struct {
	registry *crawler.Registry
	now      func() time.Time
}

var _ SiteFactory = (*RegistrySites)(nil)

func NewRegistrySites(registry *crawler.Registry) *RegistrySites {
	return &RegistrySites{registry: registry, now: time.Now}
}

func (r *RegistrySites) NewSite(source model.Source) (Site, error) {
	switch source {
	case model.SourceWanted:
		return &pair[crawler.WantedJob]{crawler: r.registry.Wanted(), adapt: adapter.Wanted, now: r.now}, nil
	case model.SourceSaramin:
		return &pair[crawler.SaraminJob]{crawler: r.registry.Saramin(), adapt: adapter.Saramin, now: r.now}, nil
	case model.SourceJumpit:
		return &pair[crawler.JumpitPosition]{crawler: r.registry.Jumpit(), adapt: adapter.Jumpit, now: r.now}, nil
	default:
		return nil, fmt.Errorf("site for %s: %w", source, model.ErrUnknownSource)
	}
}
