package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"

	"github.com/amishk599/jobscout/internal/httpclient"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

const (
	wantedBaseURL    = "https://www.wanted.co.kr"
	wantedPageSize   = 100
	wantedJobGroupID = 518
	wantedMaxYears   = 10
)

// Software, web, frontend and Node.js roles.
var wantedJobIDs = []int{10110, 873, 669, 895}

var wantedDetailIDPattern = regexp.MustCompile(`/wd/(\d+)`)

// WantedJob is one listing record as returned by the wanted search API.
type WantedJob struct {
	ID             int64         `json:"id"`
	Position       string        `json:"position"`
	Company        WantedCompany `json:"company"`
	TitleImg       WantedImage   `json:"title_img"`
	Address        WantedAddress `json:"address"`
	AnnualFrom     int           `json:"annual_from"`
	AnnualTo       int           `json:"annual_to"`
	EmploymentType string        `json:"employment_type"`
	RewardTotal    string        `json:"reward_total,omitempty"`
	IsBookmark     bool          `json:"is_bookmark,omitempty"`
}

type WantedCompany struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type WantedImage struct {
	Origin string `json:"origin,omitempty"`
	Thumb  string `json:"thumb,omitempty"`
}

type WantedAddress struct {
	Country  string `json:"country"`
	Location string `json:"location"`
	District string `json:"district"`
}

type wantedListResponse struct {
	Data []json.RawMessage `json:"data"`
}

type wantedDetailResponse struct {
	Data struct {
		Job struct {
			Detail *struct {
				Intro           string `json:"intro"`
				MainTasks       string `json:"main_tasks"`
				Requirements    string `json:"requirements"`
				PreferredPoints string `json:"preferred_points"`
				Benefits        string `json:"benefits"`
			} `json:"detail"`
		} `json:"job"`
	} `json:"data"`
}

// WantedCrawler pages through the wanted search API.
type WantedCrawler struct {
	client   *httpclient.Client
	throttle *ratelimit.Throttle
	baseURL  string
	logger   *slog.Logger
	pages    int
}

var (
	_ Crawler[WantedJob] = (*WantedCrawler)(nil)
	_ model.DetailFetcher = (*WantedCrawler)(nil)
)

// NewWantedCrawler creates a wanted crawler. An empty baseURL targets the public site.
func NewWantedCrawler(client *httpclient.Client, throttle *ratelimit.Throttle, baseURL string, logger *slog.Logger) *WantedCrawler {
	if baseURL == "" {
		baseURL = wantedBaseURL
	}
	return &WantedCrawler{
		client:   client,
		throttle: throttle,
		baseURL:  baseURL,
		logger:   logger.With("source", model.SourceWanted),
	}
}

// FetchList collects listings in pages of 100 until a short or empty page.
func (c *WantedCrawler) FetchList(ctx context.Context, opts model.CrawlOptions) ([]WantedJob, error) {
	c.pages = 0
	var all []WantedJob

	for offset := 0; ; offset += wantedPageSize {
		if offset > 0 {
			if err := c.throttle.Wait(ctx, ratelimit.KeyWanted); err != nil {
				return truncate(all, opts.Limit), err
			}
		}

		var resp wantedListResponse
		if err := c.client.GetJSON(ctx, c.listURL(opts, offset), &resp); err != nil {
			return truncate(all, opts.Limit), fmt.Errorf("wanted list at offset %d: %w", offset, err)
		}
		c.pages++

		for _, item := range resp.Data {
			job, ok := decodeWantedJob(item)
			if !ok {
				c.logger.Debug("dropping malformed listing", "offset", offset)
				continue
			}
			all = append(all, job)
		}
		c.logger.Info("page fetched", "page", c.pages, "items", len(resp.Data), "total", len(all))

		if len(resp.Data) < wantedPageSize || limitReached(opts.Limit, len(all)) {
			break
		}
	}
	return truncate(all, opts.Limit), nil
}

func decodeWantedJob(raw json.RawMessage) (WantedJob, bool) {
	var job WantedJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return WantedJob{}, false
	}
	if job.ID == 0 || job.Position == "" {
		return WantedJob{}, false
	}
	return job, true
}

func (c *WantedCrawler) listURL(opts model.CrawlOptions, offset int) string {
	q := url.Values{}
	q.Set("job_group_id", strconv.Itoa(wantedJobGroupID))
	q.Set("country", "kr")
	q.Set("job_sort", "job.latest_order")
	for _, id := range wantedJobIDs {
		q.Add("job_ids", strconv.Itoa(id))
	}
	for _, y := range wantedYears(opts.Experience) {
		q.Add("years", strconv.Itoa(y))
	}
	for _, loc := range wantedLocations.ResolveAll(opts.Locations) {
		q.Add("locations", loc)
	}
	if len(opts.Keywords) > 0 {
		q.Set("query", joinKeywords(opts.Keywords))
	}
	q.Set("limit", strconv.Itoa(wantedPageSize))
	q.Set("offset", strconv.Itoa(offset))
	return c.baseURL + "/api/chaos/navigation/v1/results?" + q.Encode()
}

var firstNumber = regexp.MustCompile(`\d+`)

// wantedYears turns an experience filter like "3년 이상" into 3..10.
// Without a number the full 0..10 range is requested as its two bounds.
func wantedYears(experience string) []int {
	m := firstNumber.FindString(experience)
	if m == "" {
		return []int{0, wantedMaxYears}
	}
	from, _ := strconv.Atoi(m)
	if from > wantedMaxYears {
		from = wantedMaxYears
	}
	years := make([]int, 0, wantedMaxYears-from+1)
	for y := from; y <= wantedMaxYears; y++ {
		years = append(years, y)
	}
	return years
}

// FetchDetail loads the detail sections of a posting URL like .../wd/12345.
func (c *WantedCrawler) FetchDetail(ctx context.Context, postingURL string) string {
	m := wantedDetailIDPattern.FindStringSubmatch(postingURL)
	if m == nil {
		c.logger.Warn("detail url has no posting id", "url", postingURL)
		return DetailFallback
	}

	var resp wantedDetailResponse
	apiURL := c.baseURL + "/api/chaos/jobs/v4/" + m[1] + "/details"
	if err := c.client.GetJSON(ctx, apiURL, &resp); err != nil {
		c.logger.Warn("detail fetch failed", "url", postingURL, "error", err)
		return DetailFallback
	}
	d := resp.Data.Job.Detail
	if d == nil {
		c.logger.Warn("detail payload empty", "url", postingURL)
		return DetailFallback
	}

	content := formatSections([]section{
		{"회사 소개", extractText(d.Intro)},
		{"주요 업무", extractText(d.MainTasks)},
		{"자격 요건", extractText(d.Requirements)},
		{"우대 사항", extractText(d.PreferredPoints)},
		{"혜택 및 복지", extractText(d.Benefits)},
	})
	if content == "" {
		return DetailFallback
	}
	return content
}

// Pages reports the listing pages fetched by the last FetchList.
func (c *WantedCrawler) Pages() int { return c.pages }

// Close is a no-op; the crawler holds no connections of its own.
func (c *WantedCrawler) Close() error { return nil }
