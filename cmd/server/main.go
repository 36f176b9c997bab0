package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/baxromumarov/quote-hunter/internal/api"
	"github.com/baxromumarov/quote-hunter/internal/core"
	"github.com/baxromumarov/quote-hunter/internal/httpx"
	"github.com/baxromumarov/quote-hunter/internal/store"
)

const defaultBaseURL = "http://quotes.toscrape.com"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	baseURL := envOr("BASE_URL", defaultBaseURL)
	userAgent := envOr("USER_AGENT", httpx.DefaultUserAgent)

	ctx := context.Background()

	// Robots policy is checked once, up front; the verdict gates every
	// fetch for the lifetime of the process.
	gate := httpx.NewPolicyGate(userAgent, 10*time.Second, logger)
	gate.Check(ctx, baseURL)

	var fetcher httpx.Fetcher = httpx.NewClient(gate, httpx.WithUserAgent(userAgent), httpx.WithLogger(logger))
	if os.Getenv("FETCHER") == "colly" {
		fetcher = httpx.NewCollyFetcher(userAgent, gate, logger)
	}

	crawler, err := core.NewCrawler(baseURL, fetcher, logger)
	if err != nil {
		slog.Error("failed to build crawler", "error", err)
		os.Exit(1)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		runOnce(ctx, crawler, logger)
		return
	}

	dbStore, err := store.NewStore(dbURL)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	// Run schema migrations to ensure the quotes table exists
	workDir, _ := os.Getwd()
	schemaPath := filepath.Join(workDir, "internal", "store", "schema.sql")
	if err := dbStore.RunMigrations(schemaPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	interval := 30 * time.Minute
	if v := os.Getenv("CRAWL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	service := core.NewCrawlService(crawler, dbStore, interval, logger)
	service.Start(ctx)

	srv := api.NewServer(dbStore, service)

	port := envOr("PORT", "8080")
	slog.Info("starting server", "port", port, "base_url", baseURL)
	if err := http.ListenAndServe(":"+port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// runOnce crawls a single time and writes the record set and tag report
// to OUTPUT_DIR. Used when no database is configured.
func runOnce(ctx context.Context, crawler *core.Crawler, logger *slog.Logger) {
	outDir := envOr("OUTPUT_DIR", ".")

	quotes, outcome := crawler.CrawlAll(ctx)
	logger.Info("crawl done", "quotes", len(quotes), "outcome", outcome.String())

	writers := map[string]func() error{
		"quotes.json":      func() error { return store.SaveJSON(quotes, filepath.Join(outDir, "quotes.json")) },
		"quotes.csv":       func() error { return store.SaveCSV(quotes, filepath.Join(outDir, "quotes.csv")) },
		"quotes.txt":       func() error { return store.SaveText(quotes, filepath.Join(outDir, "quotes.txt")) },
		"tag_analysis.txt": func() error { return store.SaveTagReport(quotes, filepath.Join(outDir, "tag_analysis.txt")) },
	}
	for name, write := range writers {
		if err := write(); err != nil {
			logger.Error("failed to write output", "file", name, "error", err)
			continue
		}
		logger.Info("output written", "file", name)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
