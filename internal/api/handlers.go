package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/baxromumarov/quote-hunter/internal/analyzer"
	"github.com/baxromumarov/quote-hunter/internal/observability"
	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	quotes, total, err := s.store.GetQuotes(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch quotes: "+err.Error())
		return
	}
	// Return empty list if nil to be JSON friendly
	if quotes == nil {
		quotes = []scraper.Quote{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  quotes,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.GetAllQuotes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch quotes: "+err.Error())
		return
	}

	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			n = parsed
		}
	}

	top := analyzer.TopTags(quotes, n)
	if top == nil {
		top = []analyzer.TagCount{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  top,
		"report": analyzer.Summarize(quotes),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

// handleCrawl kicks off a crawl in the background; results land in the
// store when the crawl finishes.
func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		respondError(w, http.StatusServiceUnavailable, "Crawler not configured")
		return
	}
	// Detached from the request context: the crawl outlives the response.
	go s.service.CrawlOnce(context.Background())
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "crawl started"})
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
