package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// PolicyGate decides once, at startup, whether the target site permits
// crawling. The verdict is cached for the lifetime of the scraper and
// consulted before every fetch; it is never re-evaluated mid-crawl.
type PolicyGate struct {
	client *http.Client
	ua     string
	logger *slog.Logger

	once    sync.Once
	allowed bool
}

func NewPolicyGate(userAgent string, timeout time.Duration, logger *slog.Logger) *PolicyGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyGate{
		client:  &http.Client{Timeout: timeout},
		ua:      userAgent,
		logger:  logger,
		allowed: true,
	}
}

// Check fetches baseURL/robots.txt and records the verdict. Any failure
// (network, bad status, malformed content) fails open: scraping proceeds
// under uncertainty with a logged warning. Only an explicit disallow of
// the site root for our agent group denies the crawl.
func (g *PolicyGate) Check(ctx context.Context, baseURL string) bool {
	g.once.Do(func() {
		g.allowed = g.check(ctx, baseURL)
	})
	return g.allowed
}

// Allowed returns the cached verdict. A gate that was never checked
// allows everything, consistent with the fail-open policy.
func (g *PolicyGate) Allowed() bool {
	return g.allowed
}

func (g *PolicyGate) check(ctx context.Context, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		g.logger.Warn("robots check skipped: bad base url", "url", baseURL, "error", err)
		return true
	}

	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		g.logger.Warn("robots check skipped", "url", robotsURL, "error", err)
		return true
	}
	req.Header.Set("User-Agent", g.ua)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("could not fetch robots.txt, proceeding anyway", "url", robotsURL, "error", err)
		return true
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("robots.txt not available, proceeding anyway", "url", robotsURL, "status", resp.StatusCode)
		return true
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		g.logger.Warn("robots.txt unparsable, proceeding anyway", "url", robotsURL, "error", err)
		return true
	}

	group := data.FindGroup(g.ua)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return true
	}
	if !group.Test("/") {
		g.logger.Warn("scraping disallowed by robots.txt", "url", baseURL)
		return false
	}
	return true
}
