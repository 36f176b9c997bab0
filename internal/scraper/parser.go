package scraper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/quote-hunter/internal/urlutil"
)

// Markup contract: each quote lives in a div.quote holding a span.text,
// a small.author, zero or more .tags a, and optionally a permalink as the
// first a[href].
const (
	containerSelector = "div.quote"
	textSelector      = "span.text"
	authorSelector    = "small.author"
	tagSelector       = ".tags a"
	linkSelector      = "a[href]"
)

// Parser extracts Quote records from raw page markup. Parsing never
// fails: malformed pages degrade to empty or partial results with a
// logged warning, and one bad container never aborts the page.
type Parser struct {
	base       *url.URL
	normalizer Normalizer
	logger     *slog.Logger
}

func NewParser(baseURL string, logger *slog.Logger) (*Parser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		base:       base,
		normalizer: NewSimpleNormalizer(),
		logger:     logger,
	}, nil
}

func (p *Parser) Parse(content string) []Quote {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		p.logger.Warn("page unparsable, skipping", "error", err)
		return nil
	}

	containers := doc.Find(containerSelector)
	if containers.Length() == 0 {
		p.logger.Warn("no quote containers found on page")
		return nil
	}

	var quotes []Quote
	containers.Each(func(_ int, s *goquery.Selection) {
		q, ok := p.parseContainer(s)
		if !ok {
			return
		}
		quotes = append(quotes, q)
	})
	return quotes
}

// parseContainer extracts one record. Containers missing text or author
// are skipped silently.
func (p *Parser) parseContainer(s *goquery.Selection) (Quote, bool) {
	text := p.clean(s.Find(textSelector).First().Text())
	author := p.clean(s.Find(authorSelector).First().Text())
	if text == "" || author == "" {
		return Quote{}, false
	}

	var tags []string
	s.Find(tagSelector).Each(func(_ int, tag *goquery.Selection) {
		if t := p.clean(tag.Text()); t != "" {
			tags = append(tags, t)
		}
	})

	link := ""
	if href, ok := s.Find(linkSelector).First().Attr("href"); ok {
		link = urlutil.Resolve(p.base, href)
	}

	return Quote{Text: text, Author: author, Tags: tags, Link: link}, true
}

func (p *Parser) clean(raw string) string {
	if normalized, err := p.normalizer.Normalize(raw); err == nil {
		return normalized
	}
	return strings.TrimSpace(raw)
}
