package discovery

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/baxromumarov/quote-hunter/internal/urlutil"
)

// DefaultMaxPages is the safety bound on pagination: even a site whose
// "next" links cycle forever yields at most this many page URLs.
const DefaultMaxPages = 10

// FetchFunc retrieves one page body. The paginator owns no HTTP details;
// the caller injects whatever fetcher it uses for the crawl proper.
type FetchFunc func(ctx context.Context, rawURL string) (string, error)

// Paginator walks the "next page" link chain from a base URL and
// enumerates every page URL. Discovery is strictly sequential: each step
// needs the previous page's content. The URL set is deterministic given
// the site content; page bodies are fetched once here and discarded.
type Paginator struct {
	fetch    FetchFunc
	maxPages int
	logger   *slog.Logger
}

func NewPaginator(fetch FetchFunc, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paginator{
		fetch:    fetch,
		maxPages: DefaultMaxPages,
		logger:   logger,
	}
}

// Enumerate returns the page URLs reachable from baseURL via next links.
// It stops on the page cap, a repeated URL, a missing or unresolvable
// next link, or a failed fetch. The base URL itself is always recorded
// first, even if its fetch later fails.
func (p *Paginator) Enumerate(ctx context.Context, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		p.logger.Warn("pagination skipped: bad base url", "url", baseURL, "error", err)
		return nil
	}

	visited := make(map[string]bool)
	var pages []string

	next := baseURL
	for next != "" && len(pages) < p.maxPages {
		key, err := urlutil.Normalize(next)
		if err != nil {
			break
		}
		if visited[key] {
			break
		}
		visited[key] = true
		pages = append(pages, next)

		content, err := p.fetch(ctx, next)
		if err != nil {
			p.logger.Warn("pagination stopped: fetch failed", "url", next, "error", err)
			break
		}

		href := findNextLink(content)
		if href == "" {
			break
		}
		next = urlutil.Resolve(base, href)
	}

	return pages
}

// findNextLink locates the pagination marker (an <li class="next"> whose
// first descendant anchor carries the href). Returns "" when absent.
func findNextLink(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var href string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "li" && hasClass(n, "next") {
			if a := findAnchor(n); a != "" {
				href = a
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return href
}

func findAnchor(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := findAnchor(c); href != "" {
			return href
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
