// Package httpclient performs timeout-bounded GET requests with retry and
// exponential backoff, returning decoded JSON or raw text.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/retry"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	userAgent  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	acceptJSON = "application/json"
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Config holds the client-wide defaults. A zero Timeout or Backoff falls back
// to the package defaults; a negative MaxRetries means DefaultMaxRetries.
type Config struct {
	Timeout    time.Duration // per attempt
	MaxRetries int
	Backoff    retry.Backoff
}

// Client issues GET requests that look like they come from a browser.
type Client struct {
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    retry.Backoff
	logger     *slog.Logger
}

// NewClient wraps httpClient. A nil httpClient uses a fresh http.Client;
// deadlines come from per-attempt contexts, not http.Client.Timeout.
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Backoff.Base <= 0 {
		cfg.Backoff = retry.DefaultBackoff
	}
	return &Client{
		http:       httpClient,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		logger:     logger,
	}
}

// Option customises a single request.
type Option func(*requestOptions)

type requestOptions struct {
	timeout    time.Duration
	maxRetries int
	headers    map[string]string
}

// WithTimeout bounds each attempt of this request.
func WithTimeout(d time.Duration) Option {
	return func(o *requestOptions) { o.timeout = d }
}

// WithMaxRetries overrides the retry budget of this request.
func WithMaxRetries(n int) Option {
	return func(o *requestOptions) { o.maxRetries = n }
}

// WithHeader adds or replaces one request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) { o.headers[key] = value }
}

// GetJSON fetches url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any, opts ...Option) error {
	body, err := c.get(ctx, url, acceptJSON, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}

// GetText fetches url and returns the body as a string.
func (c *Client) GetText(ctx context.Context, url string, opts ...Option) (string, error) {
	body, err := c.get(ctx, url, acceptHTML, opts)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url, accept string, opts []Option) ([]byte, error) {
	o := requestOptions{
		timeout:    c.timeout,
		maxRetries: c.maxRetries,
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          accept,
			"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	var body []byte
	err := retry.Do(ctx, o.maxRetries, c.backoff, c.logger, func(ctx context.Context) error {
		b, err := c.attempt(ctx, url, o)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	return body, err
}

// attempt performs one request; the whole exchange including the body read
// is cancelled when the per-attempt timeout elapses.
func (c *Client) attempt(ctx context.Context, url string, o requestOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Err:        fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}
	return body, nil
}
