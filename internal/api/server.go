// Package api exposes the HTTP surface: streaming generation endpoints,
// artifact CRUD, and the playable document view.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosgamer/promptplay/internal/engine"
	"github.com/mosgamer/promptplay/internal/store"
)

// maxRequestBody is the maximum allowed request body size (1 MB).
const maxRequestBody int64 = 1 << 20

// Server holds the HTTP handlers and dependencies.
type Server struct {
	store      store.ArtifactRepository
	controller *engine.Controller
	corsOrigin string
	live       bool
	router     chi.Router
}

// New creates a new API server. live reports whether a real producer key is
// configured; a stub-backed server announces itself as not live so clients
// can warn before generating.
func New(s store.ArtifactRepository, c *engine.Controller, corsOrigin string, live bool) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	srv := &Server{store: s, controller: c, corsOrigin: corsOrigin, live: live, router: chi.NewRouter()}
	srv.routes()
	return srv
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(limitBody(s.router))
}

func (s *Server) routes() {
	s.router.Post("/api/generate", s.handleGenerate)
	s.router.Post("/api/improve", s.handleImprove)
	s.router.Post("/api/suggest", s.handleSuggest)
	s.router.Get("/api/artifacts", s.handleList)
	s.router.Get("/api/artifacts/{id}", s.handleGet)
	s.router.Delete("/api/artifacts/{id}", s.handleDelete)
	s.router.Patch("/api/artifacts/{id}/title", s.handleRename)
	s.router.Post("/api/artifacts/{id}/vote", s.handleVote)
	s.router.Post("/api/artifacts/{id}/rate", s.handleRate)
	s.router.Get("/api/status", s.handleStatus)
	s.router.Get("/artifacts/{id}/play", s.handlePlay)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody restricts the request body to maxRequestBody bytes.
func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
