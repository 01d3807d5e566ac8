package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/crawler"
	"github.com/amishk599/jobscout/internal/httpclient"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/store"
)

// --- Fakes ---

// fakeSite returns a canned result and records whether it was closed.
type fakeSite struct {
	result CrawlResult
	err    error
	closed bool
}

func (s *fakeSite) Crawl(_ context.Context, _ model.CrawlOptions) (CrawlResult, error) {
	return s.result, s.err
}

func (s *fakeSite) Close() error {
	s.closed = true
	return nil
}

// fakeSites hands out one fakeSite per source and records the call order.
type fakeSites struct {
	sites   map[model.Source]*fakeSite
	factErr map[model.Source]error
	calls   []model.Source
}

func (f *fakeSites) NewSite(source model.Source) (Site, error) {
	f.calls = append(f.calls, source)
	if err := f.factErr[source]; err != nil {
		return nil, err
	}
	site, ok := f.sites[source]
	if !ok {
		return nil, model.ErrUnknownSource
	}
	return site, nil
}

// recordingNotifier records every event.
type recordingNotifier struct {
	events []model.Event
}

func (n *recordingNotifier) Notify(ev model.Event) error {
	n.events = append(n.events, ev)
	return nil
}

type titleFilter string

func (f titleFilter) Match(j model.JobPosting) bool { return strings.Contains(j.Title, string(f)) }

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJobs(source model.Source, ids ...string) []model.JobPosting {
	jobs := make([]model.JobPosting, len(ids))
	for i, id := range ids {
		jobs[i] = model.JobPosting{ID: model.JobID(source, id), Source: source, Title: "job " + id}
	}
	return jobs
}

func okSite(source model.Source, ids ...string) *fakeSite {
	return &fakeSite{result: CrawlResult{Raw: ids, Jobs: makeJobs(source, ids...), Pages: 1}}
}

type fixture struct {
	svc      *JobService
	sites    *fakeSites
	store    *store.MemoryStore
	notifier *recordingNotifier
}

func newFixture(sites map[model.Source]*fakeSite) *fixture {
	f := &fixture{
		sites:    &fakeSites{sites: sites, factErr: map[model.Source]error{}},
		store:    store.NewMemoryStore(),
		notifier: &recordingNotifier{},
	}
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ids := 0
	f.svc = NewJobService(f.sites, f.store, f.notifier, discardLogger(), WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	f.svc.newID = func() string {
		ids++
		return "log-" + string(rune('a'+ids-1))
	}
	return f
}

// --- Tests ---

func TestCrawlSite_Success(t *testing.T) {
	site := okSite(model.SourceWanted, "1", "2")
	f := newFixture(map[model.Source]*fakeSite{model.SourceWanted: site})

	jobs, err := f.svc.CrawlSite(context.Background(), model.SourceWanted, model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if !site.closed {
		t.Error("site was not closed")
	}

	raw, _ := f.store.LoadRaw(model.SourceWanted)
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil || len(ids) != 2 {
		t.Errorf("raw dump = %s (%v)", raw, err)
	}

	stored, _ := f.store.LoadJobs()
	if len(stored) != 0 {
		t.Errorf("CrawlSite must not write the normalized collection, found %d", len(stored))
	}

	logs, _ := f.store.LoadCrawlLogs()
	if len(logs) != 1 {
		t.Fatalf("expected 1 crawl log, got %d", len(logs))
	}
	l := logs[0]
	if l.Status != model.CrawlSuccess || l.TotalItems != 2 || l.PagesScraped != 1 {
		t.Errorf("log = %+v", l)
	}
	if l.CompletedAt == nil || l.Duration != 1000 {
		t.Errorf("completion not stamped: %+v", l)
	}

	if len(f.notifier.events) != 1 || f.notifier.events[0].Type != model.EventCrawlFinished {
		t.Errorf("events = %+v", f.notifier.events)
	}
}

func TestCrawlSite_PartialKeepsItems(t *testing.T) {
	site := okSite(model.SourceSaramin, "1")
	site.err = errors.New("page 2: HTTP 403")
	f := newFixture(map[model.Source]*fakeSite{model.SourceSaramin: site})

	jobs, err := f.svc.CrawlSite(context.Background(), model.SourceSaramin, model.CrawlOptions{})
	if err != nil {
		t.Fatalf("partial crawl should not fail: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(jobs))
	}
	logs, _ := f.store.LoadCrawlLogs()
	if logs[0].Status != model.CrawlPartial || !strings.Contains(logs[0].Error, "403") {
		t.Errorf("log = %+v", logs[0])
	}
}

func TestCrawlSite_FailureClosesAndLogs(t *testing.T) {
	site := &fakeSite{err: errors.New("connection refused")}
	f := newFixture(map[model.Source]*fakeSite{model.SourceJumpit: site})

	jobs, err := f.svc.CrawlSite(context.Background(), model.SourceJumpit, model.CrawlOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if jobs != nil {
		t.Errorf("expected nil jobs, got %v", jobs)
	}
	if !site.closed {
		t.Error("site was not closed after failure")
	}
	if raw, _ := f.store.LoadRaw(model.SourceJumpit); raw != nil {
		t.Errorf("raw dump written on failure: %s", raw)
	}
	logs, _ := f.store.LoadCrawlLogs()
	if len(logs) != 1 || logs[0].Status != model.CrawlFailed {
		t.Errorf("logs = %+v", logs)
	}
}

func TestCrawlSite_UnknownSource(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{})
	_, err := f.svc.CrawlSite(context.Background(), "linkedin", model.CrawlOptions{})
	if !errors.Is(err, model.ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestCrawlAllSites_SequentialAndOverwrites(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{
		model.SourceWanted:  okSite(model.SourceWanted, "1", "2"),
		model.SourceSaramin: okSite(model.SourceSaramin, "3"),
		model.SourceJumpit:  okSite(model.SourceJumpit, "4"),
	})
	f.store.SaveJobs(makeJobs(model.SourceWanted, "old"))

	jobs, err := f.svc.CrawlAllSites(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 4 {
		t.Fatalf("expected 4 jobs, got %d", len(jobs))
	}
	wantOrder := []model.Source{model.SourceWanted, model.SourceSaramin, model.SourceJumpit}
	for i, src := range wantOrder {
		if f.sites.calls[i] != src {
			t.Errorf("call %d = %s, want %s", i, f.sites.calls[i], src)
		}
	}

	stored, _ := f.store.LoadJobs()
	if len(stored) != 4 {
		t.Fatalf("expected 4 stored jobs, got %d", len(stored))
	}
	for _, j := range stored {
		if j.ID == "wanted-old" {
			t.Error("previous snapshot should be overwritten, not merged")
		}
	}
}

func TestCrawlAllSites_SkipsFailingSource(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{
		model.SourceWanted:  okSite(model.SourceWanted, "1"),
		model.SourceSaramin: {err: errors.New("blocked")},
		model.SourceJumpit:  okSite(model.SourceJumpit, "2"),
	})

	jobs, err := f.svc.CrawlAllSites(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(jobs))
	}
	logs, _ := f.store.LoadCrawlLogs()
	if len(logs) != 3 {
		t.Errorf("expected a log per source, got %d", len(logs))
	}
}

func TestCrawlAllSites_AllFailKeepsSnapshot(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{
		model.SourceWanted:  {err: errors.New("a")},
		model.SourceSaramin: {err: errors.New("b")},
		model.SourceJumpit:  {err: errors.New("c")},
	})
	f.store.SaveJobs(makeJobs(model.SourceWanted, "keep"))

	if _, err := f.svc.CrawlAllSites(context.Background(), model.CrawlOptions{}); err == nil {
		t.Fatal("expected error, got nil")
	}
	stored, _ := f.store.LoadJobs()
	if len(stored) != 1 || stored[0].ID != "wanted-keep" {
		t.Errorf("snapshot changed: %+v", stored)
	}
}

func TestCrawlAllSites_CancelledContext(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{
		model.SourceWanted: okSite(model.SourceWanted, "1"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.svc.CrawlAllSites(ctx, model.CrawlOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(f.sites.calls) != 0 {
		t.Errorf("no site should be built after cancellation, got %v", f.sites.calls)
	}
}

// cancellingSite cancels the crawl context partway through and reports the
// records collected so far, as a real crawler does on ctrl+c.
type cancellingSite struct {
	cancel context.CancelFunc
	jobs   []model.JobPosting
	closed bool
}

func (s *cancellingSite) Crawl(ctx context.Context, _ model.CrawlOptions) (CrawlResult, error) {
	s.cancel()
	return CrawlResult{Raw: []string{"1"}, Jobs: s.jobs, Pages: 1}, ctx.Err()
}

func (s *cancellingSite) Close() error {
	s.closed = true
	return nil
}

func TestCrawlAllSites_CancelledDuringLastSourceKeepsSnapshot(t *testing.T) {
	f := newFixture(nil)
	previous := makeJobs(model.SourceWanted, "a", "b", "c", "d")
	if err := f.store.SaveJobs(previous); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	last := &cancellingSite{cancel: cancel, jobs: makeJobs(model.SourceJumpit, "1")}
	sites := &cancellingSites{site: last}
	f.svc = NewJobService(sites, f.store, f.notifier, discardLogger(), WithSources([]model.Source{model.SourceJumpit}))

	jobs, err := f.svc.CrawlAllSites(ctx, model.CrawlOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if jobs != nil {
		t.Errorf("expected no jobs, got %d", len(jobs))
	}
	stored, _ := f.store.LoadJobs()
	if len(stored) != len(previous) {
		t.Errorf("cancelled crawl replaced the snapshot: stored %d records, want %d", len(stored), len(previous))
	}
	if !last.closed {
		t.Error("site should be closed")
	}
}

type cancellingSites struct {
	site *cancellingSite
}

func (c *cancellingSites) NewSite(model.Source) (Site, error) {
	return c.site, nil
}

func TestCrawlAllSites_WithSources(t *testing.T) {
	f := newFixture(map[model.Source]*fakeSite{
		model.SourceJumpit: okSite(model.SourceJumpit, "9"),
	})
	f.svc = NewJobService(f.sites, f.store, f.notifier, discardLogger(), WithSources([]model.Source{model.SourceJumpit}))

	jobs, err := f.svc.CrawlAllSites(context.Background(), model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 || len(f.sites.calls) != 1 {
		t.Errorf("jobs=%d calls=%v", len(jobs), f.sites.calls)
	}
}

func TestGetJobs_Filter(t *testing.T) {
	f := newFixture(nil)
	jobs := makeJobs(model.SourceWanted, "1", "2")
	jobs[1].Title = "Go 개발자"
	f.store.SaveJobs(jobs)

	all, err := f.svc.GetJobs(nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetJobs(nil) = %d, %v", len(all), err)
	}
	matched, err := f.svc.GetJobs(titleFilter("Go"))
	if err != nil || len(matched) != 1 || matched[0].ID != "wanted-2" {
		t.Errorf("GetJobs(filter) = %+v, %v", matched, err)
	}
}

func TestReplaceSource_KeepsOtherSources(t *testing.T) {
	f := newFixture(nil)
	stored := append(makeJobs(model.SourceWanted, "1", "2"), makeJobs(model.SourceJumpit, "7")...)
	f.store.SaveJobs(stored)

	if err := f.svc.ReplaceSource(model.SourceWanted, makeJobs(model.SourceWanted, "3")); err != nil {
		t.Fatalf("ReplaceSource: %v", err)
	}

	jobs, _ := f.svc.GetJobs(nil)
	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	if strings.Join(ids, ",") != "jumpit-7,wanted-3" {
		t.Errorf("ids = %v, want [jumpit-7 wanted-3]", ids)
	}
}

func TestClearAllData(t *testing.T) {
	f := newFixture(nil)
	f.store.SaveJobs(makeJobs(model.SourceWanted, "1"))
	if err := f.svc.ClearAllData(); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}
	if jobs, _ := f.svc.GetJobs(nil); len(jobs) != 0 {
		t.Errorf("expected empty store, got %d jobs", len(jobs))
	}
}

func TestRegistrySites_WantedEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":123,"position":"서버 개발자","company":{"name":"토스"},` +
			`"address":{"location":"서울","district":"강남구"},"annual_from":0,"annual_to":0}]}`))
	}))
	defer srv.Close()

	client := httpclient.NewClient(nil, httpclient.Config{MaxRetries: 0}, discardLogger())
	throttle := ratelimit.NewThrottle(0, map[string]time.Duration{ratelimit.KeyWanted: 0})
	registry := crawler.NewRegistry(client, throttle, crawler.Endpoints{Wanted: srv.URL}, discardLogger())

	mem := store.NewMemoryStore()
	svc := NewJobService(NewRegistrySites(registry), mem, &recordingNotifier{}, discardLogger())

	jobs, err := svc.CrawlSite(context.Background(), model.SourceWanted, model.CrawlOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "wanted-123" || j.Requirements.Experience != "신입" || j.Location != "서울 강남구" {
		t.Errorf("adapted job = %+v", j)
	}
	if raw, _ := mem.LoadRaw(model.SourceWanted); !strings.Contains(string(raw), `"position": "서버 개발자"`) {
		t.Errorf("raw dump = %s", raw)
	}
}
