package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/baxromumarov/quote-hunter/internal/observability"
	"github.com/baxromumarov/quote-hunter/internal/store"
)

// CrawlService runs the crawler on an interval and persists the results,
// with a retention loop that expires stale records.
type CrawlService struct {
	crawler   *Crawler
	store     *store.Store
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
}

func NewCrawlService(crawler *Crawler, st *store.Store, interval time.Duration, logger *slog.Logger) *CrawlService {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &CrawlService{
		crawler:   crawler,
		store:     st,
		logger:    logger,
		interval:  interval,
		retention: 30 * 24 * time.Hour,
	}
}

func (s *CrawlService) Start(ctx context.Context) {
	go s.crawlLoop(ctx)
	go s.cleanupLoop(ctx)
}

func (s *CrawlService) crawlLoop(ctx context.Context) {
	s.CrawlOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CrawlOnce(ctx)
		}
	}
}

// CrawlOnce runs a full crawl and saves whatever it produced. An empty
// result is logged with its outcome, not treated as a fault.
func (s *CrawlService) CrawlOnce(ctx context.Context) {
	quotes, outcome := s.crawler.CrawlAll(ctx)
	if len(quotes) == 0 {
		s.logger.Warn("crawl produced no quotes", "outcome", outcome.String())
		return
	}

	if err := s.store.SaveQuotes(ctx, quotes); err != nil {
		observability.IncError(observability.ErrorStore, "service")
		s.logger.Error("failed to save quotes", "error", err)
		return
	}
	s.logger.Info("quotes saved", "count", len(quotes), "outcome", outcome.String())
}

func (s *CrawlService) cleanupLoop(ctx context.Context) {
	s.cleanup(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *CrawlService) cleanup(ctx context.Context) {
	deleted, err := s.store.DeleteOldQuotes(ctx, s.retention)
	if err != nil {
		s.logger.Error("retention cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("retention cleanup removed expired quotes", "count", deleted)
	}
}
