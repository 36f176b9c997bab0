package analyzer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/quote-hunter/internal/analyzer"
	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

func quoteWithTags(tags ...string) scraper.Quote {
	return scraper.Quote{Text: "q", Author: "a", Tags: tags}
}

func TestCountTags(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{
		quoteWithTags("love", "life"),
		quoteWithTags("life", "wisdom"),
		quoteWithTags("love"),
	}

	counts := analyzer.CountTags(quotes)
	assert.Equal(t, 2, counts["love"])
	assert.Equal(t, 2, counts["life"])
	assert.Equal(t, 1, counts["wisdom"])
}

func TestCountTags_TotalMatchesTagListLengths(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{
		quoteWithTags("a", "b", "c"),
		quoteWithTags(),
		quoteWithTags("a", "a"),
		quoteWithTags("d"),
	}

	expected := 0
	for _, q := range quotes {
		expected += len(q.Tags)
	}

	total := 0
	for _, c := range analyzer.CountTags(quotes) {
		total += c
	}
	assert.Equal(t, expected, total)
}

func TestTopTags(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{
		quoteWithTags("a", "b", "c"),
		quoteWithTags("a", "b"),
		quoteWithTags("a"),
	}

	top := analyzer.TopTags(quotes, 2)
	require.Len(t, top, 2)
	assert.Equal(t, analyzer.TagCount{Tag: "a", Count: 3}, top[0])
	assert.Equal(t, analyzer.TagCount{Tag: "b", Count: 2}, top[1])
}

func TestTopTags_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{
		quoteWithTags("zebra", "apple"),
		quoteWithTags("zebra", "apple"),
		quoteWithTags("mango"),
	}

	top := analyzer.TopTags(quotes, 10)
	require.Len(t, top, 3)
	assert.Equal(t, "zebra", top[0].Tag)
	assert.Equal(t, "apple", top[1].Tag)
	assert.Equal(t, "mango", top[2].Tag)
}

func TestTopTags_Truncates(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{quoteWithTags("a", "b", "c", "d", "e")}
	assert.Len(t, analyzer.TopTags(quotes, 3), 3)
	assert.Len(t, analyzer.TopTags(quotes, 0), 0)
	assert.Len(t, analyzer.TopTags(nil, 5), 0)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, analyzer.NoDataMessage, analyzer.Summarize(nil))
	assert.Equal(t, analyzer.NoDataMessage, analyzer.Summarize([]scraper.Quote{}))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	quotes := []scraper.Quote{
		quoteWithTags("love", "life"),
		quoteWithTags("love"),
	}

	report := analyzer.Summarize(quotes)
	assert.Contains(t, report, "=== TAG ANALYSIS ===")
	assert.Contains(t, report, "Total unique tags: 2")
	assert.Contains(t, report, "Total tag uses: 3")
	assert.Contains(t, report, "Average tags per quote: 1.5")
	assert.Contains(t, report, "- love: 2 quotes")
	assert.Contains(t, report, "- life: 1 quotes")

	lines := strings.Split(report, "\n")
	require.Greater(t, len(lines), 6)
}
