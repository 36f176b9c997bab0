package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/quote-hunter/internal/analyzer"
	"github.com/baxromumarov/quote-hunter/internal/scraper"
	"github.com/baxromumarov/quote-hunter/internal/store"
)

func sampleQuotes() []scraper.Quote {
	return []scraper.Quote{
		{
			Text:   "“The world as we have created it is a process of our thinking.”",
			Author: "Albert Einstein",
			Tags:   []string{"change", "deep-thoughts"},
			Link:   "http://quotes.example.com/author/Albert-Einstein",
		},
		{
			Text:   "“Untagged and unlinked.”",
			Author: "Anonymous",
			Tags:   nil,
			Link:   "",
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.json")
	quotes := sampleQuotes()

	require.NoError(t, store.SaveJSON(quotes, path))

	loaded, err := store.LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(quotes))
	for i := range quotes {
		assert.Equal(t, quotes[i].Text, loaded[i].Text)
		assert.Equal(t, quotes[i].Author, loaded[i].Author)
		assert.Equal(t, quotes[i].Link, loaded[i].Link)
		assert.ElementsMatch(t, quotes[i].Tags, loaded[i].Tags)
	}
}

func TestSaveJSON_EmptySetIsValidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.json")
	require.NoError(t, store.SaveJSON(nil, path))

	loaded, err := store.LoadJSON(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSaveCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.csv")
	require.NoError(t, store.SaveCSV(sampleQuotes(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "text,author,tags,link")
	assert.Contains(t, content, "Albert Einstein")
	assert.Contains(t, content, "change, deep-thoughts")
}

func TestSaveText(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.txt")
	require.NoError(t, store.SaveText(sampleQuotes(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "— Albert Einstein")
	assert.Contains(t, content, "Tags: change, deep-thoughts")
	assert.Contains(t, content, "Link: N/A")
}

func TestSaveTagReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tag_analysis.txt")
	require.NoError(t, store.SaveTagReport(sampleQuotes(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== TAG ANALYSIS ===")

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, store.SaveTagReport(nil, empty))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, analyzer.NoDataMessage, string(data))
}
