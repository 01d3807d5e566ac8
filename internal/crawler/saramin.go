package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/httpclient"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

const (
	saraminBaseURL  = "https://www.saramin.co.kr"
	saraminPageSize = 100
	saraminMaxPages = 20

	saraminUnknown       = "정보없음"
	saraminAlwaysHiring  = "상시채용"
	saraminListPath      = "/zf_user/jobs/list/domestic"
	saraminRelayViewPath = "/zf_user/jobs/relay/view"
)

// Backend, web development and frontend categories.
const saraminCategories = "2232,87,92"

var recIdxPattern = regexp.MustCompile(`rec_idx=(\d+)`)

// SaraminJob is one listing scraped from the saramin search results markup.
type SaraminJob struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Sectors        []string `json:"sectors"`
	Experience     string   `json:"experience"`
	Education      string   `json:"education,omitempty"`
	EmploymentType string   `json:"employmentType,omitempty"`
	Deadline       string   `json:"deadline"`
	URL            string   `json:"url"`
}

// SaraminCrawler scrapes the saramin domestic job list.
type SaraminCrawler struct {
	client   *httpclient.Client
	throttle *ratelimit.Throttle
	baseURL  string
	logger   *slog.Logger
	pages    int
}

var (
	_ Crawler[SaraminJob] = (*SaraminCrawler)(nil)
	_ model.DetailFetcher = (*SaraminCrawler)(nil)
)

// NewSaraminCrawler creates a saramin crawler. An empty baseURL targets the public site.
func NewSaraminCrawler(client *httpclient.Client, throttle *ratelimit.Throttle, baseURL string, logger *slog.Logger) *SaraminCrawler {
	if baseURL == "" {
		baseURL = saraminBaseURL
	}
	return &SaraminCrawler{
		client:   client,
		throttle: throttle,
		baseURL:  baseURL,
		logger:   logger.With("source", model.SourceSaramin),
	}
}

// FetchList scrapes up to 20 result pages, stopping at the first page without
// listings. A page that fails after earlier pages succeeded ends the run with
// the listings gathered so far and the error.
func (c *SaraminCrawler) FetchList(ctx context.Context, opts model.CrawlOptions) ([]SaraminJob, error) {
	c.pages = 0
	var all []SaraminJob

	for page := 1; page <= saraminMaxPages; page++ {
		if page > 1 {
			if err := c.throttle.Wait(ctx, ratelimit.KeySaramin); err != nil {
				return truncate(all, opts.Limit), err
			}
		}

		body, err := c.client.GetText(ctx, c.listURL(opts, page))
		if err != nil {
			return truncate(all, opts.Limit), fmt.Errorf("saramin list page %d: %w", page, err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return truncate(all, opts.Limit), fmt.Errorf("parse saramin list page %d: %w", page, err)
		}

		c.pages++

		items := doc.Find(".box_item")
		if items.Length() == 0 {
			c.logger.Info("page has no listings, stopping", "page", page)
			break
		}

		items.Each(func(_ int, s *goquery.Selection) {
			job, ok := c.parseItem(s)
			if !ok {
				c.logger.Debug("dropping unparseable listing", "page", page)
				return
			}
			all = append(all, job)
		})
		c.logger.Info("page fetched", "page", page, "items", items.Length(), "total", len(all))

		if limitReached(opts.Limit, len(all)) {
			break
		}
	}
	return truncate(all, opts.Limit), nil
}

func (c *SaraminCrawler) parseItem(s *goquery.Selection) (SaraminJob, bool) {
	link := s.Find(".job_tit a").First()
	href, _ := link.Attr("href")
	m := recIdxPattern.FindStringSubmatch(href)
	if m == nil {
		return SaraminJob{}, false
	}

	title := strings.TrimSpace(link.Find("span").Text())
	if title == "" {
		return SaraminJob{}, false
	}

	var sectors []string
	s.Find(".job_sector span").Each(func(_ int, sec *goquery.Selection) {
		if t := strings.TrimSpace(sec.Text()); t != "" {
			sectors = append(sectors, t)
		}
	})

	deadline := strings.TrimSpace(s.Find(".support_info .date").First().Text())
	if deadline == "" {
		deadline = strings.TrimSpace(s.Parent().Find(".support_info .date").First().Text())
	}

	return SaraminJob{
		ID:             m[1],
		Title:          title,
		Company:        strings.TrimSpace(s.Find(".company_nm .str_tit").First().Text()),
		Location:       textOr(s.Find(".work_place").First(), saraminUnknown),
		Sectors:        sectors,
		Experience:     textOr(s.Find(".career").First(), saraminUnknown),
		Education:      strings.TrimSpace(s.Find(".education").First().Text()),
		EmploymentType: strings.TrimSpace(s.Find(".employment_type").First().Text()),
		Deadline:       orDefault(deadline, saraminAlwaysHiring),
		URL:            c.baseURL + saraminRelayViewPath + "?rec_idx=" + m[1],
	}, true
}

func (c *SaraminCrawler) listURL(opts model.CrawlOptions, page int) string {
	locs := saraminLocations.ResolveAll(opts.Locations)
	if len(locs) == 0 {
		locs = defaultSaraminLocations
	}

	q := url.Values{}
	q.Set("loc_cd", strings.Join(locs, ","))
	q.Set("cat_kewd", saraminCategories)
	if kw := joinKeywords(opts.Keywords); kw != "" {
		q.Set("searchword", kw)
	}
	q.Set("search_optional_item", "n")
	q.Set("search_done", "y")
	q.Set("panel_count", "y")
	q.Set("preview", "y")
	q.Set("page_count", strconv.Itoa(saraminPageSize))
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + saraminListPath + "?" + q.Encode()
}

// FetchDetail scrapes the posting page's description blocks.
func (c *SaraminCrawler) FetchDetail(ctx context.Context, postingURL string) string {
	body, err := c.client.GetText(ctx, postingURL)
	if err != nil {
		c.logger.Warn("detail fetch failed", "url", postingURL, "error", err)
		return DetailFallback
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		c.logger.Warn("detail parse failed", "url", postingURL, "error", err)
		return DetailFallback
	}

	var parts []string
	if title := strings.TrimSpace(doc.Find(".tit_job").First().Text()); title != "" {
		parts = append(parts, "# "+title)
	}
	if company := strings.TrimSpace(doc.Find(".company_nm a").First().Text()); company != "" {
		parts = append(parts, "## "+company)
	}

	contents := doc.Find(".cont_wrap .content")
	sections := formatSections([]section{
		{"주요 업무", cleanLines(contents.Eq(0).Text())},
		{"자격 요건", cleanLines(contents.Eq(1).Text())},
		{"우대 사항", cleanLines(contents.Eq(2).Text())},
		{"근무 조건", cleanLines(doc.Find(".cont_wrap .conditions").Text())},
	})
	if sections == "" {
		c.logger.Warn("detail page has no description", "url", postingURL)
		return DetailFallback
	}
	return strings.Join(append(parts, sections), "\n\n")
}

// Pages reports the listing pages fetched by the last FetchList.
func (c *SaraminCrawler) Pages() int { return c.pages }

// Close is a no-op; the crawler holds no connections of its own.
func (c *SaraminCrawler) Close() error { return nil }

func textOr(s *goquery.Selection, fallback string) string {
	return orDefault(strings.TrimSpace(s.Text()), fallback)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
