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
	jumpitBaseURL = "https://jumpit-api.saramin.co.kr"
	// jumpitMaxPages guards against a totalCount that never converges.
	jumpitMaxPages = 100
)

// Server/backend, frontend and full-stack categories.
var jumpitCategories = []int{1, 2, 3}

var jumpitDetailIDPattern = regexp.MustCompile(`/position/(\d+)`)

// JumpitPosition is one listing record as returned by the jumpit positions API.
type JumpitPosition struct {
	ID                  int64    `json:"id"`
	JobCategory         string   `json:"jobCategory"`
	Logo                string   `json:"logo,omitempty"`
	ImagePath           string   `json:"imagePath,omitempty"`
	Title               string   `json:"title"`
	CompanyName         string   `json:"companyName"`
	TechStacks          []string `json:"techStacks,omitempty"`
	ScrapCount          int      `json:"scrapCount,omitempty"`
	ViewCount           int      `json:"viewCount,omitempty"`
	Newcomer            bool     `json:"newcomer"`
	MinCareer           int      `json:"minCareer"`
	MaxCareer           int      `json:"maxCareer"`
	Locations           []string `json:"locations"`
	AlwaysOpen          bool     `json:"alwaysOpen"`
	ClosedAt            string   `json:"closedAt,omitempty"`
	SerialNumber        string   `json:"serialNumber,omitempty"`
	EncodedSerialNumber string   `json:"encodedSerialNumber,omitempty"`
	Celebration         int      `json:"celebration,omitempty"`
	Scraped             bool     `json:"scraped"`
	Applied             bool     `json:"applied"`
}

type jumpitListResponse struct {
	Result struct {
		TotalCount    int               `json:"totalCount"`
		Page          int               `json:"page"`
		Positions     []json.RawMessage `json:"positions"`
		EmptyPosition bool              `json:"emptyPosition"`
	} `json:"result"`
}

type jumpitDetailResponse struct {
	Result *struct {
		ServiceInfo           string `json:"serviceInfo"`
		Responsibility        string `json:"responsibility"`
		Qualifications        string `json:"qualifications"`
		PreferredRequirements string `json:"preferredRequirements"`
		Welfares              string `json:"welfares"`
	} `json:"result"`
}

// JumpitCrawler pages through the jumpit positions API.
type JumpitCrawler struct {
	client   *httpclient.Client
	throttle *ratelimit.Throttle
	baseURL  string
	logger   *slog.Logger
	pages    int
}

var (
	_ Crawler[JumpitPosition] = (*JumpitCrawler)(nil)
	_ model.DetailFetcher     = (*JumpitCrawler)(nil)
)

// NewJumpitCrawler creates a jumpit crawler. An empty baseURL targets the public API.
func NewJumpitCrawler(client *httpclient.Client, throttle *ratelimit.Throttle, baseURL string, logger *slog.Logger) *JumpitCrawler {
	if baseURL == "" {
		baseURL = jumpitBaseURL
	}
	return &JumpitCrawler{
		client:   client,
		throttle: throttle,
		baseURL:  baseURL,
		logger:   logger.With("source", model.SourceJumpit),
	}
}

// FetchList collects positions page by page until the API reports no more
// positions or the running count reaches a reported totalCount.
func (c *JumpitCrawler) FetchList(ctx context.Context, opts model.CrawlOptions) ([]JumpitPosition, error) {
	c.pages = 0
	var all []JumpitPosition
	seen := 0

	for page := 1; page <= jumpitMaxPages; page++ {
		if page > 1 {
			if err := c.throttle.Wait(ctx, ratelimit.KeyJumpit); err != nil {
				return truncate(all, opts.Limit), err
			}
		}

		var resp jumpitListResponse
		if err := c.client.GetJSON(ctx, c.listURL(opts, page), &resp); err != nil {
			return truncate(all, opts.Limit), fmt.Errorf("jumpit list page %d: %w", page, err)
		}
		c.pages++

		r := resp.Result
		if r.EmptyPosition || len(r.Positions) == 0 {
			c.logger.Info("page has no positions, stopping", "page", page)
			break
		}
		seen += len(r.Positions)

		for _, item := range r.Positions {
			pos, ok := decodeJumpitPosition(item)
			if !ok {
				c.logger.Debug("dropping malformed position", "page", page)
				continue
			}
			all = append(all, pos)
		}
		c.logger.Info("page fetched", "page", page, "items", len(r.Positions), "total", len(all), "total_count", r.TotalCount)

		if (r.TotalCount > 0 && seen >= r.TotalCount) || limitReached(opts.Limit, len(all)) {
			break
		}
	}
	return truncate(all, opts.Limit), nil
}

func decodeJumpitPosition(raw json.RawMessage) (JumpitPosition, bool) {
	var pos JumpitPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return JumpitPosition{}, false
	}
	if pos.ID == 0 || pos.Title == "" {
		return JumpitPosition{}, false
	}
	return pos, true
}

func (c *JumpitCrawler) listURL(opts model.CrawlOptions, page int) string {
	q := url.Values{}
	for _, cat := range jumpitCategories {
		q.Add("jobCategory", strconv.Itoa(cat))
	}
	for _, loc := range saraminLocations.ResolveAll(opts.Locations) {
		q.Add("locationTag", loc)
	}
	if kw := joinKeywords(opts.Keywords); kw != "" {
		q.Set("keyword", kw)
	}
	q.Set("sort", "rsp_rate")
	q.Set("highlight", "false")
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + "/api/positions?" + q.Encode()
}

// FetchDetail loads the description of a posting URL like .../position/12345.
func (c *JumpitCrawler) FetchDetail(ctx context.Context, postingURL string) string {
	m := jumpitDetailIDPattern.FindStringSubmatch(postingURL)
	if m == nil {
		c.logger.Warn("detail url has no position id", "url", postingURL)
		return DetailFallback
	}

	var resp jumpitDetailResponse
	if err := c.client.GetJSON(ctx, c.baseURL+"/api/position/"+m[1], &resp); err != nil {
		c.logger.Warn("detail fetch failed", "url", postingURL, "error", err)
		return DetailFallback
	}
	d := resp.Result
	if d == nil {
		c.logger.Warn("detail payload empty", "url", postingURL)
		return DetailFallback
	}

	content := formatSections([]section{
		{"서비스 소개", extractText(d.ServiceInfo)},
		{"주요 업무", extractText(d.Responsibility)},
		{"자격 요건", extractText(d.Qualifications)},
		{"우대 사항", extractText(d.PreferredRequirements)},
		{"복지 및 혜택", extractText(d.Welfares)},
	})
	if content == "" {
		return DetailFallback
	}
	return content
}

// Pages reports the listing pages fetched by the last FetchList.
func (c *JumpitCrawler) Pages() int { return c.pages }

// Close is a no-op; the crawler holds no connections of its own.
func (c *JumpitCrawler) Close() error { return nil }
