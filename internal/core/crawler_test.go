package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/baxromumarov/quote-hunter/internal/httpx"
)

type fetchFunc func(ctx context.Context, rawURL string) (string, error)

func (f fetchFunc) Fetch(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

func quotesPage(count int, next string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < count; i++ {
		fmt.Fprintf(&sb, `<div class="quote">
<span class="text">“Quote number %d.”</span>
<small class="author">Author %d</small>
<div class="tags"><a class="tag" href="/tag/t%d/">t%d</a></div>
</div>`, i, i, i%3, i%3)
	}
	if next != "" {
		fmt.Fprintf(&sb, `<ul class="pager"><li class="next"><a href="%s">Next</a></li></ul>`, next)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func siteFetcher(pages map[string]string) fetchFunc {
	return func(_ context.Context, rawURL string) (string, error) {
		content, ok := pages[rawURL]
		if !ok {
			return "", errors.New("not found")
		}
		return content, nil
	}
}

func twoPageSite(base string) map[string]string {
	return map[string]string{
		base:              quotesPage(10, "/page/2/"),
		base + "/page/2/": quotesPage(10, ""),
	}
}

func TestCrawlAll_TwoCleanPages(t *testing.T) {
	t.Parallel()

	base := "http://quotes.example.com"
	crawler, err := NewCrawler(base, siteFetcher(twoPageSite(base)), nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}

	quotes, outcome := crawler.CrawlAll(context.Background())
	if outcome != OutcomeComplete {
		t.Errorf("expected complete outcome, got %s", outcome)
	}
	if len(quotes) != 20 {
		t.Fatalf("expected 20 quotes, got %d", len(quotes))
	}
	for _, q := range quotes {
		if q.Text == "" || q.Author == "" {
			t.Errorf("invariant violated: empty text or author in %+v", q)
		}
	}
}

func TestCrawlAll_SerialPathMatchesParallel(t *testing.T) {
	t.Parallel()

	base := "http://quotes.example.com"
	crawler, err := NewCrawler(base, siteFetcher(twoPageSite(base)), nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}

	urls := crawler.paginator.Enumerate(context.Background(), base)
	if len(urls) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(urls))
	}

	serial, serialOutcome := crawler.merge(crawler.crawlSerial(context.Background(), urls))
	if serialOutcome != OutcomeComplete {
		t.Errorf("expected complete outcome on serial path, got %s", serialOutcome)
	}
	if len(serial) != 20 {
		t.Fatalf("expected 20 quotes from serial path, got %d", len(serial))
	}
}

func TestCrawlAll_OnePageFailsIsPartial(t *testing.T) {
	t.Parallel()

	base := "http://quotes.example.com"
	pages := twoPageSite(base)
	fetcher := fetchFunc(func(ctx context.Context, rawURL string) (string, error) {
		if rawURL == base+"/page/2/" {
			return "", &httpx.FetchError{URL: rawURL, Attempts: 3, Status: 502, Err: errors.New("status 502")}
		}
		return siteFetcher(pages)(ctx, rawURL)
	})

	crawler, err := NewCrawler(base, fetcher, nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}

	quotes, outcome := crawler.CrawlAll(context.Background())
	if outcome != OutcomePartial {
		t.Errorf("expected partial outcome, got %s", outcome)
	}
	if len(quotes) != 10 {
		t.Fatalf("expected 10 quotes from the surviving page, got %d", len(quotes))
	}
}

func TestCrawlAll_PolicyDenied(t *testing.T) {
	t.Parallel()

	denied := fetchFunc(func(context.Context, string) (string, error) {
		return "", httpx.ErrPolicyDenied
	})

	crawler, err := NewCrawler("http://quotes.example.com", denied, nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}

	quotes, outcome := crawler.CrawlAll(context.Background())
	if outcome != OutcomePolicyDenied {
		t.Errorf("expected policy_denied outcome, got %s", outcome)
	}
	if len(quotes) != 0 {
		t.Errorf("expected no quotes when denied, got %d", len(quotes))
	}
}

func TestCrawlAll_NoPages(t *testing.T) {
	t.Parallel()

	crawler, err := NewCrawler("http://quotes.example.com", siteFetcher(nil), nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}
	// Unparsable base: enumeration yields nothing.
	crawler.baseURL = "://nowhere"

	quotes, outcome := crawler.CrawlAll(context.Background())
	if outcome != OutcomeNoPages {
		t.Errorf("expected no_pages outcome, got %s", outcome)
	}
	if len(quotes) != 0 {
		t.Errorf("expected no quotes, got %d", len(quotes))
	}
}

func TestCrawlParallel_WorkerPanicTriggersPoolError(t *testing.T) {
	t.Parallel()

	base := "http://quotes.example.com"
	bomb := fetchFunc(func(_ context.Context, rawURL string) (string, error) {
		panic("fetcher blew up")
	})

	crawler, err := NewCrawler(base, bomb, nil)
	if err != nil {
		t.Fatalf("failed to build crawler: %v", err)
	}

	_, poolErr := crawler.crawlParallel(context.Background(), []string{base})
	if poolErr == nil {
		t.Fatal("expected a pool error when a worker panics")
	}
}
