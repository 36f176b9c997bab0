package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

type Normalizer interface {
	Normalize(fragment string) (string, error)
}

// SimpleNormalizer flattens a markup fragment to plain text and collapses
// whitespace runs. Quote text on the site occasionally carries nested
// spans and hard-wrapped lines; records should store a single clean line.
type SimpleNormalizer struct{}

func NewSimpleNormalizer() *SimpleNormalizer {
	return &SimpleNormalizer{}
}

func (n *SimpleNormalizer) Normalize(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	text := ExtractText(doc)
	return strings.Join(strings.Fields(text), " "), nil
}

// ExtractText concatenates all text nodes under n.
func ExtractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(ExtractText(c))
	}
	return sb.String()
}
