package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/baxromumarov/quote-hunter/internal/discovery"
	"github.com/baxromumarov/quote-hunter/internal/httpx"
	"github.com/baxromumarov/quote-hunter/internal/observability"
	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

// DefaultWorkers bounds the fetch+parse pool.
const DefaultWorkers = 5

// Outcome reports how a crawl ended, so callers can tell an empty result
// caused by policy denial apart from one caused by a site with no pages
// or a run where some pages failed.
type Outcome int

const (
	OutcomeComplete Outcome = iota
	OutcomePartial
	OutcomeNoPages
	OutcomePolicyDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomePartial:
		return "partial"
	case OutcomeNoPages:
		return "no_pages"
	case OutcomePolicyDenied:
		return "policy_denied"
	default:
		return "unknown"
	}
}

// Crawler drives a full crawl: enumerate pages sequentially, then fetch
// and parse them on a bounded worker pool, falling back to a serial pass
// over the same URL list if the pool itself fails. The crawl is
// best-effort: per-page failures are absorbed and logged, and the result
// is always some record list, possibly empty.
type Crawler struct {
	baseURL   string
	fetcher   httpx.Fetcher
	parser    *scraper.Parser
	paginator *discovery.Paginator
	workers   int
	logger    *slog.Logger
}

func NewCrawler(baseURL string, fetcher httpx.Fetcher, logger *slog.Logger) (*Crawler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parser, err := scraper.NewParser(baseURL, logger)
	if err != nil {
		return nil, err
	}
	return &Crawler{
		baseURL:   baseURL,
		fetcher:   fetcher,
		parser:    parser,
		paginator: discovery.NewPaginator(fetcher.Fetch, logger),
		workers:   DefaultWorkers,
		logger:    logger,
	}, nil
}

// pageResult is one task's outcome. Failures cross the pool boundary as
// values, never as panics.
type pageResult struct {
	url    string
	quotes []scraper.Quote
	err    error
}

// CrawlAll scrapes every page reachable from the base URL and returns
// the concatenated records in task completion order.
func (c *Crawler) CrawlAll(ctx context.Context) (quotes []scraper.Quote, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("crawl aborted", "panic", r)
			quotes, outcome = nil, OutcomePartial
		}
	}()

	start := time.Now()

	urls := c.paginator.Enumerate(ctx, c.baseURL)
	if len(urls) == 0 {
		c.logger.Warn("no pages found to scrape", "base_url", c.baseURL)
		return nil, OutcomeNoPages
	}

	results, poolErr := c.crawlParallel(ctx, urls)
	if poolErr != nil {
		// Systemic pool failure: abandon partial results and rerun the
		// whole list serially. A total restart, not a resume.
		observability.IncSerialFallback()
		c.logger.Warn("worker pool failed, falling back to serial crawl", "error", poolErr)
		results = c.crawlSerial(ctx, urls)
	}

	quotes, outcome = c.merge(results)
	observability.ObserveCrawlDuration(time.Since(start).Seconds())
	c.logger.Info("crawl finished",
		"pages", len(urls),
		"quotes", len(quotes),
		"outcome", outcome.String(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return quotes, outcome
}

// crawlParallel runs one fetch+parse task per URL on a bounded pool and
// collects results in completion order. A single task's failure never
// cancels its siblings; only a panic escaping a worker counts as a pool
// failure and is reported to the caller.
func (c *Crawler) crawlParallel(ctx context.Context, urls []string) ([]pageResult, error) {
	tasks := make(chan string, len(urls))
	for _, u := range urls {
		tasks <- u
	}
	close(tasks)

	results := make(chan pageResult, len(urls))
	panics := make(chan error, c.workers)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					select {
					case panics <- fmt.Errorf("worker panic: %v", r):
					default:
					}
				}
			}()
			for u := range tasks {
				results <- c.crawlPage(ctx, u)
			}
		}()
	}
	wg.Wait()
	close(results)
	close(panics)

	if err := <-panics; err != nil {
		return nil, err
	}

	collected := make([]pageResult, 0, len(urls))
	for r := range results {
		collected = append(collected, r)
	}
	return collected, nil
}

// crawlSerial refetches every URL in order. The fetcher's courtesy delay
// paces the loop.
func (c *Crawler) crawlSerial(ctx context.Context, urls []string) []pageResult {
	results := make([]pageResult, 0, len(urls))
	for _, u := range urls {
		results = append(results, c.crawlPage(ctx, u))
	}
	return results
}

func (c *Crawler) crawlPage(ctx context.Context, pageURL string) pageResult {
	content, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "crawler")
		return pageResult{url: pageURL, err: err}
	}
	observability.IncPagesCrawled()

	quotes := c.parser.Parse(content)
	observability.AddQuotesScraped(len(quotes))
	return pageResult{url: pageURL, quotes: quotes}
}

func (c *Crawler) merge(results []pageResult) ([]scraper.Quote, Outcome) {
	var all []scraper.Quote
	failed := 0
	denied := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			if errors.Is(r.err, httpx.ErrPolicyDenied) {
				denied++
			}
			c.logger.Warn("page crawl failed", "url", r.url, "error", r.err)
			continue
		}
		c.logger.Info("page scraped", "url", r.url, "quotes", len(r.quotes))
		all = append(all, r.quotes...)
	}

	switch {
	case len(results) > 0 && denied == len(results):
		return nil, OutcomePolicyDenied
	case failed > 0:
		return all, OutcomePartial
	default:
		return all, OutcomeComplete
	}
}
