// Package discover walks paginated listing pages and collects review links.
package discover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/waxwing/internal/catalog"
	"github.com/jmylchreest/waxwing/internal/fetch"
	"github.com/jmylchreest/waxwing/internal/logger"
)

// DefaultWorkers is the listing-stage concurrency cap. Listing pages are
// cheap to re-run wholesale, so the pool stays small and fixed.
const DefaultWorkers = 5

const (
	listingPath   = "/reviews/albums/"
	errorMarker   = "div.error-page"
	reviewLinkSel = "a.review__link"
)

// Config holds crawler configuration.
type Config struct {
	BaseURL  string
	Workers  int
	Progress io.Writer // one dot per completed listing page; nil disables
}

// Crawler discovers review links across a numeric page range.
type Crawler struct {
	fetcher fetch.Fetcher
	config  Config
}

// New creates a Crawler.
func New(fetcher fetch.Fetcher, cfg Config) *Crawler {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return &Crawler{fetcher: fetcher, config: cfg}
}

// Discover fetches every listing page in [startPage, endPage] with a bounded
// worker pool and returns the links found. Completion order is arbitrary, so
// the result is a multiset with no page ordering guarantee.
func (c *Crawler) Discover(ctx context.Context, startPage, endPage int) []catalog.Link {
	sem := make(chan struct{}, c.config.Workers)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var links []catalog.Link

	for page := startPage; page <= endPage; page++ {
		pageURL := fmt.Sprintf("%s%s?page=%d", c.config.BaseURL, listingPath, page)

		sem <- struct{}{}
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			found := c.listingLinks(ctx, pageURL)
			if len(found) == 0 {
				return
			}
			mu.Lock()
			links = append(links, found...)
			mu.Unlock()
		}(pageURL)
	}
	wg.Wait()

	return links
}

// listingLinks extracts review links from a single listing page.
//
// A page carrying the error marker is past the end of pagination: it yields
// zero links and is not a failure. Transport problems also yield zero links
// (the stage is re-run wholesale rather than retried per page); they are
// surfaced at debug level only.
func (c *Crawler) listingLinks(ctx context.Context, pageURL string) []catalog.Link {
	page, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil || !page.Success() {
		logger.Debug("listing fetch failed", "url", pageURL, "status", page.StatusCode, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		logger.Debug("listing parse failed", "url", pageURL, "error", err)
		return nil
	}

	if doc.Find(errorMarker).Length() > 0 {
		logger.Info("listing page does not exist", "url", pageURL)
		return nil
	}

	pageNum := pageNumber(pageURL)
	var links []catalog.Link
	doc.Find(reviewLinkSel).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		links = append(links, catalog.Link{
			Page: pageNum,
			URL:  c.absoluteURL(pageURL, href),
		})
	})

	if c.config.Progress != nil {
		fmt.Fprint(c.config.Progress, ".")
	}
	return links
}

// pageNumber reads the page query parameter off a listing URL.
func pageNumber(listingURL string) int {
	parsed, err := url.Parse(listingURL)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(parsed.Query().Get("page"))
	return n
}

// absoluteURL resolves a listing href against the page it was found on.
func (c *Crawler) absoluteURL(pageURL, href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return href
	}
	if link.IsAbs() {
		return link.String()
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(link).String()
}
