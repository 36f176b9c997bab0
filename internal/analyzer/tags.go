package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

// NoDataMessage is returned by Summarize for an empty record set.
const NoDataMessage = "No quotes available for tag analysis"

const reportHeader = "=== TAG ANALYSIS ==="

// FrequencyTable maps a tag to its occurrence count across a record set.
// It is derived state, recomputed on demand.
type FrequencyTable map[string]int

// TagCount is one (tag, count) pair of a ranked listing.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// CountTags increments one counter per tag occurrence across all records.
// The total of all counters equals the sum of per-record tag list lengths.
func CountTags(quotes []scraper.Quote) FrequencyTable {
	counts := make(FrequencyTable)
	for _, q := range quotes {
		for _, tag := range q.Tags {
			counts[tag]++
		}
	}
	return counts
}

// TopTags returns at most n tags ordered by descending count. Ties keep
// the order in which tags were first encountered in the record set.
func TopTags(quotes []scraper.Quote, n int) []TagCount {
	counts := make(FrequencyTable)
	var order []string
	for _, q := range quotes {
		for _, tag := range q.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	ranked := make([]TagCount, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Summarize renders the plain-text tag report: unique-tag count, total
// occurrences, mean tags per record to one decimal, and the top-10 list.
func Summarize(quotes []scraper.Quote) string {
	if len(quotes) == 0 {
		return NoDataMessage
	}

	counts := CountTags(quotes)
	totalUses := 0
	for _, c := range counts {
		totalUses += c
	}

	lines := []string{
		"",
		reportHeader,
		fmt.Sprintf("Total unique tags: %d", len(counts)),
		fmt.Sprintf("Total tag uses: %d", totalUses),
		fmt.Sprintf("Average tags per quote: %.1f", float64(totalUses)/float64(len(quotes))),
		"",
		"Top 10 most popular tags:",
	}
	for _, tc := range TopTags(quotes, 10) {
		lines = append(lines, fmt.Sprintf("- %s: %d quotes", tc.Tag, tc.Count))
	}

	return strings.Join(lines, "\n")
}
