// Package pipeline fetches review detail pages and extracts records from them.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/waxwing/internal/extract"
	"github.com/jmylchreest/waxwing/internal/fetch"
	"github.com/jmylchreest/waxwing/internal/logger"
	"github.com/jmylchreest/waxwing/internal/review"
	"github.com/jmylchreest/waxwing/internal/worklist"
)

// DefaultWorkers mirrors the platform default for I/O-bound thread pools.
func DefaultWorkers() int {
	return runtime.NumCPU() + 4
}

// Store is the sink for extracted records. Implementations must be safe
// for concurrent use and must guarantee at most one row per natural key.
type Store interface {
	InsertIfAbsent(ctx context.Context, rec *review.Review) (bool, error)
}

// Config holds pipeline configuration.
type Config struct {
	Workers  int
	Progress io.Writer // one dot per extracted record; nil disables
}

// Result aggregates a run. Slices carry no ordering guarantee.
type Result struct {
	Inserted        int
	TransportErrors []string
	PendingRetry    []string
}

// Pipeline runs the detail-page stage: fetch, extract, classify, persist.
type Pipeline struct {
	fetcher      fetch.Fetcher
	store        Store
	transportLog *worklist.Log
	retryLog     *worklist.Log
	config       Config
}

// New creates a Pipeline. Either worklist log may be nil, in which case the
// corresponding failures are only aggregated in the Result.
func New(fetcher fetch.Fetcher, store Store, transportLog, retryLog *worklist.Log, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers()
	}
	return &Pipeline{
		fetcher:      fetcher,
		store:        store,
		transportLog: transportLog,
		retryLog:     retryLog,
		config:       cfg,
	}
}

// outcome classifies one processed URL.
type outcome int

const (
	outcomeInserted outcome = iota
	outcomeDuplicate
	outcomeTransport
	outcomePendingRetry
)

// Run processes every URL with a bounded worker pool. Per-item failures are
// isolated: transport failures and unextractable pages are logged to their
// worklists and counted, without affecting sibling workers. A layout change
// on a required region is fatal: the run is cancelled and the error returned,
// since recovering per item would store records with empty identity keys.
func (p *Pipeline) Run(ctx context.Context, urls []string) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, p.config.Workers)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var res Result
	var fatal error

	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := p.process(ctx, u)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if fatal == nil {
					fatal = err
					cancel()
				}
				return
			}

			switch out {
			case outcomeInserted:
				res.Inserted++
			case outcomeTransport:
				res.TransportErrors = append(res.TransportErrors, u)
				p.appendTo(p.transportLog, u)
			case outcomePendingRetry:
				res.PendingRetry = append(res.PendingRetry, u)
				p.appendTo(p.retryLog, u)
			}
		}(u)
	}
	wg.Wait()

	if fatal != nil {
		return res, fatal
	}
	return res, nil
}

// process fetches and extracts a single URL.
func (p *Pipeline) process(ctx context.Context, u string) (outcome, error) {
	page, err := p.fetcher.Fetch(ctx, u)
	if err != nil || !page.Success() {
		if ctx.Err() != nil {
			return outcomeTransport, ctx.Err()
		}
		logger.Debug("detail fetch failed", "url", u, "status", page.StatusCode, "error", err)
		return outcomeTransport, nil
	}

	// Cheap raw-body check before committing to a full parse: pages for
	// unpublished or removed reviews carry no article marker at all.
	if !bytes.Contains(page.Body, []byte(extract.ArticleMarker)) {
		logger.Debug("no article region", "url", u)
		return outcomePendingRetry, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		logger.Debug("detail parse failed", "url", u, "error", err)
		return outcomePendingRetry, nil
	}

	article := doc.Find(extract.ArticleSelector).First()
	if article.Length() == 0 {
		return outcomePendingRetry, nil
	}

	rec, err := extract.Extract(article)
	if err != nil {
		return outcomePendingRetry, fmt.Errorf("extract %s: %w", u, err)
	}
	if rec == nil {
		logger.Debug("record not extractable", "url", u)
		return outcomePendingRetry, nil
	}

	inserted, err := p.store.InsertIfAbsent(ctx, rec)
	if err != nil {
		return outcomePendingRetry, fmt.Errorf("store %s: %w", u, err)
	}

	if p.config.Progress != nil {
		fmt.Fprint(p.config.Progress, ".")
	}
	if !inserted {
		logger.Debug("review already stored", "artist", rec.Artist, "album", rec.Album, "url", u)
		return outcomeDuplicate, nil
	}
	return outcomeInserted, nil
}

// appendTo writes to a worklist if configured; logging is best effort and
// never fails the item.
func (p *Pipeline) appendTo(log *worklist.Log, u string) {
	if log == nil {
		return
	}
	if err := log.Append(u); err != nil {
		logger.Error("worklist append failed", "path", log.Path(), "url", u, "error", err)
	}
}
