// Package crawler pages through each job site's listing endpoint and fetches
// per-posting detail content.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobscout/internal/httpclient"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

// DetailFallback is returned by FetchDetail whenever the detail cannot be loaded.
const DetailFallback = "상세 정보를 불러올 수 없습니다."

// Crawler fetches the raw listing records of one source.
//
// FetchList returns every record collected so far together with any error, so
// a caller can tell a run that was cut short from one that produced nothing.
type Crawler[R any] interface {
	FetchList(ctx context.Context, opts model.CrawlOptions) ([]R, error)
	// Pages reports how many listing pages the last FetchList fetched.
	Pages() int
	Close() error
}

// Endpoints holds the origin of each site. Empty fields use the public sites.
type Endpoints struct {
	Wanted  string
	Saramin string
	Jumpit  string
}

// Registry builds crawlers that share one HTTP client and throttle.
type Registry struct {
	client    *httpclient.Client
	throttle  *ratelimit.Throttle
	endpoints Endpoints
	logger    *slog.Logger
}

// NewRegistry creates a registry for the given shared dependencies.
func NewRegistry(client *httpclient.Client, throttle *ratelimit.Throttle, endpoints Endpoints, logger *slog.Logger) *Registry {
	return &Registry{
		client:    client,
		throttle:  throttle,
		endpoints: endpoints,
		logger:    logger,
	}
}

func (r *Registry) Wanted() *WantedCrawler {
	return NewWantedCrawler(r.client, r.throttle, r.endpoints.Wanted, r.logger)
}

func (r *Registry) Saramin() *SaraminCrawler {
	return NewSaraminCrawler(r.client, r.throttle, r.endpoints.Saramin, r.logger)
}

func (r *Registry) Jumpit() *JumpitCrawler {
	return NewJumpitCrawler(r.client, r.throttle, r.endpoints.Jumpit, r.logger)
}

// NewDetailFetcher returns the detail-capable crawler for source.
func (r *Registry) NewDetailFetcher(source model.Source) (model.DetailFetcher, error) {
	switch source {
	case model.SourceWanted:
		return r.Wanted(), nil
	case model.SourceSaramin:
		return r.Saramin(), nil
	case model.SourceJumpit:
		return r.Jumpit(), nil
	default:
		return nil, fmt.Errorf("detail fetcher for %s: %w", source, model.ErrUnknownSource)
	}
}

// section is one named block of a formatted detail text.
type section struct {
	title string
	body  string
}

// formatSections renders the non-empty sections as "## title\nbody" blocks.
func formatSections(sections []section) string {
	var parts []string
	for _, s := range sections {
		body := strings.TrimSpace(s.body)
		if body == "" {
			continue
		}
		parts = append(parts, "## "+s.title+"\n"+body)
	}
	return strings.Join(parts, "\n\n")
}

func limitReached(limit, n int) bool {
	return limit > 0 && n >= limit
}

func truncate[R any](items []R, limit int) []R {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
