package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/baxromumarov/quote-hunter/internal/analyzer"
	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

// File writers for the scraped record set. Field names and layouts are
// fixed; the JSON form round-trips losslessly through LoadJSON.

func SaveJSON(quotes []scraper.Quote, filename string) error {
	if quotes == nil {
		quotes = []scraper.Quote{}
	}
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quotes: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func LoadJSON(filename string) ([]scraper.Quote, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	var quotes []scraper.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	return quotes, nil
}

func SaveCSV(quotes []scraper.Quote, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"text", "author", "tags", "link"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, q := range quotes {
		record := []string{q.Text, q.Author, strings.Join(q.Tags, ", "), q.Link}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filename, err)
	}
	return nil
}

func SaveText(quotes []scraper.Quote, filename string) error {
	var sb strings.Builder
	for _, q := range quotes {
		fmt.Fprintf(&sb, "%q\n", q.Text)
		fmt.Fprintf(&sb, "— %s\n", q.Author)
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(q.Tags, ", "))
		link := q.Link
		if link == "" {
			link = "N/A"
		}
		fmt.Fprintf(&sb, "Link: %s\n\n", link)
	}
	if err := os.WriteFile(filename, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func SaveTagReport(quotes []scraper.Quote, filename string) error {
	report := analyzer.Summarize(quotes)
	if err := os.WriteFile(filename, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
