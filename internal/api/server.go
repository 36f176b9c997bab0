package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baxromumarov/quote-hunter/internal/core"
	"github.com/baxromumarov/quote-hunter/internal/store"
)

type Server struct {
	router  *chi.Mux
	store   *store.Store
	service *core.CrawlService
}

func NewServer(store *store.Store, service *core.CrawlService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		store:   store,
		service: service,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/quotes", s.handleListQuotes)
	s.router.Get("/tags", s.handleTags)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/crawl", s.handleCrawl)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
