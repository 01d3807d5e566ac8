package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Source identifies one of the job sites we crawl.
type Source string

const (
	SourceWanted  Source = "wanted"
	SourceSaramin Source = "saramin"
	SourceJumpit  Source = "jumpit"
)

// AllSources lists every known source in crawl order.
var AllSources = []Source{SourceWanted, SourceSaramin, SourceJumpit}

// ParseSource maps a user-supplied name to a known Source.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range AllSources {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// JobID builds the canonical id of a posting from its source and raw identifier.
func JobID(source Source, rawID string) string {
	return string(source) + "-" + rawID
}

// JobPosting is the unified representation of a listing from any source.
type JobPosting struct {
	ID           string        `json:"id"`
	Source       Source        `json:"source"`
	Title        string        `json:"title"`
	Company      string        `json:"company"`
	URL          string        `json:"url"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Location     string        `json:"location,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
	CrawledAt    time.Time     `json:"crawledAt"`
	// RawData keeps the source payload for traceability and reprocessing.
	RawData json.RawMessage `json:"rawData,omitempty"`

	DetailContent  string     `json:"detailContent,omitempty"`
	DetailLoadedAt *time.Time `json:"detailLoadedAt,omitempty"`

	AIMessages   []ChatMessage `json:"aiMessages,omitempty"`
	AILastReadAt *time.Time    `json:"aiLastReadAt,omitempty"`
}

// HasDetail reports whether enrichment already attached detail content.
func (j JobPosting) HasDetail() bool {
	return j.DetailContent != ""
}

// Requirements holds the optional hiring constraints of a posting.
type Requirements struct {
	Experience     string `json:"experience,omitempty"`
	Education      string `json:"education,omitempty"`
	EmploymentType string `json:"employmentType,omitempty"`
}

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a posting's AI conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// CrawlOptions narrows a crawl. Zero values mean "use the source defaults".
type CrawlOptions struct {
	Keywords   []string
	Locations  []string
	Experience string
	Limit      int // max records per source; <= 0 means unlimited
}

// JobStore persists whole-collection snapshots of postings, raw dumps and crawl logs.
// Writers always read the full collection, compute the result and overwrite it.
type JobStore interface {
	SaveRaw(source Source, records any) error
	LoadRaw(source Source) (json.RawMessage, error)
	SaveJobs(jobs []JobPosting) error
	LoadJobs() ([]JobPosting, error)
	GetJob(id string) (JobPosting, error)
	UpdateJob(id string, mutate func(*JobPosting)) (JobPosting, error)
	SaveCrawlLog(log CrawlLog) error
	LoadCrawlLogs() ([]CrawlLog, error)
	ClearAll() error
	Close() error
}

// DetailFetcher fetches the long-form content of one posting.
// FetchDetail never fails: problems degrade to a fixed fallback text.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, url string) string
	Close() error
}

// JobFilter decides whether a posting matches the user's criteria.
type JobFilter interface {
	Match(job JobPosting) bool
}
