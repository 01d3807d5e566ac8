package model

import "time"

// MaxCrawlLogs caps the retained crawl run history.
const MaxCrawlLogs = 100

// CrawlStatus is the lifecycle state of one crawl run.
type CrawlStatus string

const (
	CrawlRunning CrawlStatus = "running"
	CrawlSuccess CrawlStatus = "success"
	CrawlFailed  CrawlStatus = "failed"
	CrawlPartial CrawlStatus = "partial" // cut short after producing items
)

// CrawlLog records one crawl run of a single source.
type CrawlLog struct {
	ID           string      `json:"id"`
	Source       Source      `json:"source"`
	StartedAt    time.Time   `json:"startedAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	Duration     int64       `json:"duration,omitempty"` // milliseconds
	TotalItems   int         `json:"totalItems"`
	PagesScraped int         `json:"pagesScraped"`
	Status       CrawlStatus `json:"status"`
	Error        string      `json:"error,omitempty"`
}

// Finish stamps the completion time, duration and final status.
func (l *CrawlLog) Finish(at time.Time, status CrawlStatus, err error) {
	l.CompletedAt = &at
	l.Duration = at.Sub(l.StartedAt).Milliseconds()
	l.Status = status
	if err != nil {
		l.Error = err.Error()
	}
}
