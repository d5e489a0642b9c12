package pagination

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Sternrassler/gamma-markets-client/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultPageCap is the ceiling on pages per fetch when none is configured.
const DefaultPageCap = 10

var (
	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrNoFetcher is returned when the paginator has no page fetcher.
	ErrNoFetcher = errors.New("page fetcher is required")
)

// Config holds paginator configuration.
type Config struct {
	// PageCap bounds the number of pages (page 0 included) of a single fetch,
	// whatever maxPages the caller passes. Non-positive means DefaultPageCap.
	PageCap int
}

// DefaultConfig returns the default paginator configuration.
func DefaultConfig() Config {
	return Config{
		PageCap: DefaultPageCap,
	}
}

// PageFetcher is the single-page I/O primitive used by the paginator.
// Implementations must be safe for concurrent use.
type PageFetcher interface {
	// FetchPage fetches one page and returns its decoded records.
	FetchPage(ctx context.Context, req PageRequest) ([]Record, error)
}

// PageFetcherFunc adapts a function to the PageFetcher interface.
type PageFetcherFunc func(ctx context.Context, req PageRequest) ([]Record, error)

// FetchPage calls f(ctx, req).
func (f PageFetcherFunc) FetchPage(ctx context.Context, req PageRequest) ([]Record, error) {
	return f(ctx, req)
}

// PageResult represents the outcome of fetching a single page.
type PageResult struct {
	Request PageRequest
	Records []Record
	Err     error
}

// Paginator fetches every page of an offset/limit collection.
//
// Page 0 is fetched first to find out whether more data exists; the
// remaining pages are then requested concurrently and aggregated in
// offset order. A failed page beyond page 0 is reported and skipped.
type Paginator struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewPaginator creates a new paginator.
func NewPaginator(fetcher PageFetcher, config Config) *Paginator {
	if config.PageCap <= 0 {
		config.PageCap = DefaultPageCap
	}

	return &Paginator{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentPaginator),
	}
}

// PageCap returns the effective page ceiling.
func (p *Paginator) PageCap() int {
	return p.config.PageCap
}

// FetchAll returns the records of all pages of endpoint matching filter.
// The result is best effort: pages that failed are missing from it.
func (p *Paginator) FetchAll(ctx context.Context, endpoint string, filter Filter, pageSize, maxPages int) ([]Record, error) {
	session, err := p.Run(ctx, endpoint, filter, pageSize, maxPages)
	if err != nil {
		return nil, err
	}
	return session.Records(), nil
}

// Run performs the fetch and returns the whole session, failures included.
func (p *Paginator) Run(ctx context.Context, endpoint string, filter Filter, pageSize, maxPages int) (*Session, error) {
	if p.fetcher == nil {
		return nil, ErrNoFetcher
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidPageSize, pageSize)
	}

	start := time.Now()
	session := newSession(endpoint, pageSize)

	// Phase 1: discovery
	done, err := p.discover(ctx, session, filter)
	if err != nil {
		return nil, err
	}

	// Phase 2: fan-out
	if !done {
		requests := p.pageRequests(endpoint, filter, pageSize, maxPages)
		session.PagesAttempted += len(requests)
		p.aggregate(session, p.fanOut(ctx, requests))
	}

	duration := time.Since(start)
	fetchDuration.Observe(duration.Seconds())
	fetchRecords.Observe(float64(session.Len()))

	p.logger.Info().
		Str("endpoint", endpoint).
		Int("pages", session.PagesAttempted).
		Int("failed", len(session.Failures)).
		Int("records", session.Len()).
		Bool("early_stop", session.EarlyStop).
		Dur("duration", duration).
		Msg("Paginated fetch complete")

	return session, nil
}

// discover fetches page 0 and reports whether the fetch is already complete.
// A page 0 failure is fatal: without it nothing is known about the collection.
func (p *Paginator) discover(ctx context.Context, session *Session, filter Filter) (bool, error) {
	req := NewPageRequest(session.Endpoint, filter, session.PageSize, 0)
	session.PagesAttempted++

	records, err := p.fetcher.FetchPage(ctx, req)
	if err != nil {
		pagesTotal.WithLabelValues(outcomeFailed).Inc()
		p.logger.Error().
			Err(err).
			Str("endpoint", session.Endpoint).
			Int("limit", session.PageSize).
			Msg("First page fetch failed")
		return false, fmt.Errorf("fetch first page: %w", err)
	}
	pagesTotal.WithLabelValues(outcomeOK).Inc()

	if session.append(req, records) {
		p.logger.Debug().
			Str("endpoint", session.Endpoint).
			Int("records", len(records)).
			Msg("First page is the last page")
		return true, nil
	}
	return false, nil
}

// pageRequests builds the requests for pages 1..min(maxPages, PageCap)-1.
// Pages whose offset would overflow an int are not requested.
func (p *Paginator) pageRequests(endpoint string, filter Filter, pageSize, maxPages int) []PageRequest {
	numPages := min(maxPages, p.config.PageCap)
	if numPages <= 1 {
		return nil
	}

	requests := make([]PageRequest, 0, numPages-1)
	for page := 1; page < numPages; page++ {
		if page > math.MaxInt/pageSize {
			break
		}
		requests = append(requests, NewPageRequest(endpoint, filter, pageSize, page*pageSize))
	}
	return requests
}

// fanOut issues all requests concurrently and waits for every one of them.
// Results are indexed like requests, so completion order does not matter.
func (p *Paginator) fanOut(ctx context.Context, requests []PageRequest) []PageResult {
	results := make([]PageResult, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req PageRequest) {
			defer wg.Done()
			records, err := p.fetcher.FetchPage(ctx, req)
			results[i] = PageResult{Request: req, Records: records, Err: err}
		}(i, req)
	}
	wg.Wait()

	return results
}

// aggregate appends page results in offset order. Failed pages are skipped
// and aggregation continues; a short page ends it and later pages are dropped.
func (p *Paginator) aggregate(session *Session, results []PageResult) {
	stopped := false
	for _, result := range results {
		if stopped {
			session.Discarded++
			pagesTotal.WithLabelValues(outcomeDiscarded).Inc()
			continue
		}

		if result.Err != nil {
			pageErr := session.fail(result.Request, result.Err)
			pagesTotal.WithLabelValues(outcomeFailed).Inc()
			p.logger.Warn().
				Err(pageErr.Err).
				Str("endpoint", session.Endpoint).
				Int("page", result.Request.Index()).
				Int("offset", result.Request.Offset).
				Msg("Page fetch failed - skipping")
			continue
		}

		pagesTotal.WithLabelValues(outcomeOK).Inc()
		stopped = session.append(result.Request, result.Records)
	}

	if session.Discarded > 0 {
		p.logger.Debug().
			Str("endpoint", session.Endpoint).
			Int("stop_offset", session.StopOffset).
			Int("discarded", session.Discarded).
			Msg("Discarded pages past end of data")
	}
}
