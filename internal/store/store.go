// Package store persists postings, per-source raw dumps and crawl logs as
// whole-collection JSON snapshots.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	jobsCollection = "normalized"
	logsCollection = "crawl-logs"
)

func rawCollection(source model.Source) string {
	return string(source) + "-raw"
}

// backend stores one opaque blob per collection name.
type backend interface {
	// read returns nil, nil when the collection was never written.
	read(name string) ([]byte, error)
	write(name string, data []byte) error
	clear() error
	close() error
}

// snapshotStore implements model.JobStore on top of a backend. Every write
// reads the full collection, changes it in memory and overwrites it, so the
// mutex serialises read-modify-write cycles within the process.
type snapshotStore struct {
	mu sync.Mutex
	b  backend
}

var _ model.JobStore = (*snapshotStore)(nil)

func (s *snapshotStore) SaveRaw(source model.Source, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding raw %s records: %w", source, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.b.write(rawCollection(source), data); err != nil {
		return fmt.Errorf("saving raw %s records: %w", source, err)
	}
	return nil
}

// LoadRaw returns the last raw dump of source, or nil if none was saved.
func (s *snapshotStore) LoadRaw(source model.Source) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.b.read(rawCollection(source))
	if err != nil {
		return nil, fmt.Errorf("loading raw %s records: %w", source, err)
	}
	return data, nil
}

func (s *snapshotStore) SaveJobs(jobs []model.JobPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJobs(jobs)
}

func (s *snapshotStore) LoadJobs() ([]model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readJobs()
}

func (s *snapshotStore) GetJob(id string) (model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.readJobs()
	if err != nil {
		return model.JobPosting{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return model.JobPosting{}, fmt.Errorf("job %s: %w", id, model.ErrJobNotFound)
}

// UpdateJob applies mutate to the stored posting with the given id and
// rewrites the collection. The id itself cannot be changed.
func (s *snapshotStore) UpdateJob(id string, mutate func(*model.JobPosting)) (model.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.readJobs()
	if err != nil {
		return model.JobPosting{}, err
	}
	for i := range jobs {
		if jobs[i].ID != id {
			continue
		}
		mutate(&jobs[i])
		jobs[i].ID = id
		if err := s.writeJobs(jobs); err != nil {
			return model.JobPosting{}, err
		}
		return jobs[i], nil
	}
	return model.JobPosting{}, fmt.Errorf("job %s: %w", id, model.ErrJobNotFound)
}

// SaveCrawlLog inserts or replaces the log with the same id, keeping the
// newest MaxCrawlLogs entries first.
func (s *snapshotStore) SaveCrawlLog(log model.CrawlLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readLogs()
	if err != nil {
		return err
	}
	updated := make([]model.CrawlLog, 0, len(logs)+1)
	updated = append(updated, log)
	for _, l := range logs {
		if l.ID != log.ID {
			updated = append(updated, l)
		}
	}
	if len(updated) > model.MaxCrawlLogs {
		updated = updated[:model.MaxCrawlLogs]
	}

	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding crawl logs: %w", err)
	}
	if err := s.b.write(logsCollection, data); err != nil {
		return fmt.Errorf("saving crawl logs: %w", err)
	}
	return nil
}

// LoadCrawlLogs returns the stored logs, newest first.
func (s *snapshotStore) LoadCrawlLogs() ([]model.CrawlLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLogs()
}

// ClearAll removes every collection.
func (s *snapshotStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.b.clear(); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}

func (s *snapshotStore) Close() error {
	return s.b.close()
}

func (s *snapshotStore) readJobs() ([]model.JobPosting, error) {
	data, err := s.b.read(jobsCollection)
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}
	jobs := []model.JobPosting{}
	if data == nil {
		return jobs, nil
	}
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("decoding jobs: %w", err)
	}
	return jobs, nil
}

func (s *snapshotStore) writeJobs(jobs []model.JobPosting) error {
	if jobs == nil {
		jobs = []model.JobPosting{}
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding jobs: %w", err)
	}
	if err := s.b.write(jobsCollection, data); err != nil {
		return fmt.Errorf("saving jobs: %w", err)
	}
	return nil
}

func (s *snapshotStore) readLogs() ([]model.CrawlLog, error) {
	data, err := s.b.read(logsCollection)
	if err != nil {
		return nil, fmt.Errorf("loading crawl logs: %w", err)
	}
	logs := []model.CrawlLog{}
	if data == nil {
		return logs, nil
	}
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("decoding crawl logs: %w", err)
	}
	return logs, nil
}
