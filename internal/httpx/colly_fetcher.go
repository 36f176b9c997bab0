package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher is an alternate Fetcher built on Colly. It honors the same
// contract as Client: policy gate first, three attempts with linear
// backoff, empty bodies retried, courtesy delay after success. Selected
// with FETCHER=colly; Colly additionally enforces robots.txt per request.
type CollyFetcher struct {
	ua            string
	timeout       time.Duration
	gate          *PolicyGate
	maxAttempts   int
	backoffStep   time.Duration
	courtesyDelay time.Duration
	logger        *slog.Logger
}

func NewCollyFetcher(userAgent string, gate *PolicyGate, logger *slog.Logger) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CollyFetcher{
		ua:            userAgent,
		timeout:       defaultTimeout,
		gate:          gate,
		maxAttempts:   defaultMaxAttempts,
		backoffStep:   defaultBackoffStep,
		courtesyDelay: defaultCourtesyDelay,
		logger:        logger,
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.gate != nil && !f.gate.Allowed() {
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
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, time.Duration(attempt-1)*f.backoffStep); err != nil {
				return "", err
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		body, status, err := f.fetchOnce(ctx, target.String())
		if err == nil {
			if err := sleepWithContext(ctx, f.courtesyDelay); err != nil {
				return "", err
			}
			return body, nil
		}

		lastErr = err
		lastStatus = status
		f.logger.Warn("colly fetch attempt failed", "url", target.String(), "attempt", attempt, "status", status, "error", err)
	}

	if lastErr == nil {
		lastErr = errors.New("colly fetch failed")
	}
	return "", &FetchError{URL: target.String(), Attempts: f.maxAttempts, Status: lastStatus, Err: lastErr}
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, target string) (string, int, error) {
	c := colly.NewCollector(colly.UserAgent(f.ua))
	c.IgnoreRobotsTxt = false
	c.SetRequestTimeout(f.timeout)

	status := 0
	var body string
	var reqErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", acceptLanguage)
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok && reqCtx.Err() != nil {
				r.Abort()
			}
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return "", status, err
	}
	c.Wait()

	if reqErr != nil {
		return "", status, reqErr
	}
	if status >= 400 {
		return "", status, fmt.Errorf("status %d", status)
	}
	if strings.TrimSpace(body) == "" {
		return "", status, ErrEmptyBody
	}
	return body, status, nil
}
