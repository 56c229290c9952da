// Package fetch provides the shared HTTP layer used by both harvest stages.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/waxwing/internal/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Page is the raw outcome of a single GET.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	FetchedAt  time.Time
}

// Success reports whether the response carried a 2xx status.
func (p Page) Success() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Fetcher abstracts page fetching so stages can be tested without a network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
	Close() error
}

// Config holds client configuration.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Client fetches pages with Colly. A single transport is shared across
// all requests so workers reuse connections to the same host.
type Client struct {
	config    Config
	transport *http.Transport
}

// NewClient creates a client safe for concurrent use.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		config:    cfg,
		transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

// Fetch retrieves a single page. A non-2xx status is returned alongside
// an error; the status code and any body are still populated so callers
// can classify the failure.
func (c *Client) Fetch(ctx context.Context, targetURL string) (Page, error) {
	result := Page{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	// A fresh collector per request keeps the response callbacks free of
	// cross-request state; the shared transport keeps connections pooled.
	col := colly.NewCollector(
		colly.UserAgent(c.config.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.StdlibContext(ctx),
	)
	col.WithTransport(c.transport)
	col.SetRequestTimeout(c.config.Timeout)

	var fetchErr error

	col.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.Body = r.Body
		logger.Debug("fetch response", "url", targetURL, "status", r.StatusCode, "body_size", len(r.Body))
	})

	col.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
			result.Body = r.Body
		}
		fetchErr = fmt.Errorf("fetch %s: %w", targetURL, err)
		logger.Debug("fetch error", "url", targetURL, "status", result.StatusCode, "error", err)
	})

	if err := col.Visit(targetURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	col.Wait()

	return result, fetchErr
}

// Close releases idle connections held by the shared transport.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
