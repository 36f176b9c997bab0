package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent matches a desktop browser; the site serves the same
	// markup either way but some mirrors reject obvious bot agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	acceptLanguage = "en-US,en;q=0.9"

	defaultTimeout       = 10 * time.Second
	defaultMaxAttempts   = 3
	defaultBackoffStep   = 1 * time.Second
	defaultCourtesyDelay = 1 * time.Second
)

// ErrPolicyDenied is returned without a network call when the PolicyGate
// has denied the crawl.
var ErrPolicyDenied = errors.New("fetch denied by robots policy")

// ErrEmptyBody marks a response with no usable content; treated as a
// retryable attempt failure.
var ErrEmptyBody = errors.New("empty response body")

// FetchError reports retry exhaustion. It carries the last cause; the
// caller decides disposition.
type FetchError struct {
	URL      string
	Attempts int
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts (status %d): %v", e.URL, e.Attempts, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves one page body. Implementations never panic across
// this boundary; all failure is an error return.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Client is the default Fetcher: plain GET with a fixed timeout, bounded
// retries with linear backoff, a courtesy delay after every successful
// request, and per-host rate limiting on top.
type Client struct {
	client        *http.Client
	gate          *PolicyGate
	ua            string
	maxAttempts   int
	backoffStep   time.Duration
	courtesyDelay time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

type ClientOption func(*Client)

func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.ua = ua
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithBackoffStep sets the base delay; attempt k waits k*step before
// attempt k+1.
func WithBackoffStep(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.backoffStep = d
		}
	}
}

func WithCourtesyDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.courtesyDelay = d
		}
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(gate *PolicyGate, opts ...ClientOption) *Client {
	c := &Client{
		client:        &http.Client{Timeout: defaultTimeout},
		gate:          gate,
		ua:            DefaultUserAgent,
		maxAttempts:   defaultMaxAttempts,
		backoffStep:   defaultBackoffStep,
		courtesyDelay: defaultCourtesyDelay,
		logger:        slog.Default(),
		limiters:      map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves rawURL. Transport errors, non-2xx statuses and empty
// bodies each fail one attempt; exhausting all attempts yields a
// *FetchError wrapping the last cause.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	if c.gate != nil && !c.gate.Allowed() {
		return "", ErrPolicyDenied
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if target.Scheme == "" {
		target.Scheme = "http"
	}

	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, time.Duration(attempt-1)*c.backoffStep); err != nil {
				return "", err
			}
		}
		if err := c.limiterFor(target.Hostname()).Wait(ctx); err != nil {
			return "", err
		}

		body, status, err := c.fetchOnce(ctx, target.String())
		if err == nil {
			// Courtesy delay bounds the request rate even when the
			// caller fetches in a tight loop.
			if err := sleepWithContext(ctx, c.courtesyDelay); err != nil {
				return "", err
			}
			return body, nil
		}

		lastErr = err
		lastStatus = status
		c.logger.Warn("fetch attempt failed", "url", target.String(), "attempt", attempt, "status", status, "error", err)
	}

	return "", &FetchError{URL: target.String(), Attempts: c.maxAttempts, Status: lastStatus, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", resp.StatusCode, ErrEmptyBody
	}
	return string(body), resp.StatusCode, nil
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(c.courtesyDelay), 2)
	if c.courtesyDelay == 0 {
		l = rate.NewLimiter(rate.Inf, 1)
	}
	c.limiters[host] = l
	return l
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
