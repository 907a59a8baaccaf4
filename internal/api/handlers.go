package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/mosgamer/promptplay/internal/engine"
	"github.com/mosgamer/promptplay/internal/model"
	"github.com/mosgamer/promptplay/internal/stream"
)

// maxTitleLength bounds user-supplied titles.
const maxTitleLength = 200

// ---------------------------------------------------------------------------
// POST /api/generate
// ---------------------------------------------------------------------------

type generateRequest struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	events, err := s.controller.Generate(r.Context(), engine.GenerateRequest{
		Prompt: req.Prompt,
		Title:  req.Title,
	})
	if err != nil {
		writeValidation(w, err)
		return
	}
	s.streamEvents(w, r, events)
}

// ---------------------------------------------------------------------------
// POST /api/improve
// ---------------------------------------------------------------------------

type improveRequest struct {
	Prompt      string              `json:"prompt"`
	Document    string              `json:"document"`
	Suggestions []engine.Suggestion `json:"suggestions"`
	ArtifactID  string              `json:"artifactId"`
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	events, err := s.controller.Improve(r.Context(), engine.ImproveRequest{
		Prompt:      req.Prompt,
		Document:    req.Document,
		Suggestions: req.Suggestions,
		ArtifactID:  req.ArtifactID,
	})
	if err != nil {
		writeValidation(w, err)
		return
	}
	s.streamEvents(w, r, events)
}

// streamEvents relays a session's event channel as framed records. Framing
// starts only after validation passed; from here on, failures travel inside
// the stream.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request, events <-chan stream.Event) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if _, err := w.Write(stream.Encode(ev)); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// ---------------------------------------------------------------------------
// POST /api/suggest
// ---------------------------------------------------------------------------

type suggestRequest struct {
	Prompt   string `json:"prompt"`
	Document string `json:"document"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	suggestions, err := s.controller.Suggest(r.Context(), req.Prompt, req.Document)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Msg)
			return
		}
		slog.Error("suggest failed", "error", err)
		writeError(w, http.StatusBadGateway, "Suggestions could not be generated. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// ---------------------------------------------------------------------------
// GET /api/artifacts
// ---------------------------------------------------------------------------

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List(r.Context())
	if err != nil {
		slog.Error("list artifacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list artifacts")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// ---------------------------------------------------------------------------
// GET /api/artifacts/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get artifact")
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

// ---------------------------------------------------------------------------
// DELETE /api/artifacts/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existed, err := s.store.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete artifact")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ---------------------------------------------------------------------------
// PATCH /api/artifacts/{id}/title
// ---------------------------------------------------------------------------

type renameRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || utf8.RuneCountInString(req.Title) > maxTitleLength {
		writeError(w, http.StatusBadRequest, "Title must be between 1 and 200 characters.")
		return
	}

	id := chi.URLParam(r, "id")
	existed, err := s.store.Rename(r.Context(), id, req.Title)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rename artifact")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "title": req.Title})
}

// ---------------------------------------------------------------------------
// POST /api/artifacts/{id}/vote
// ---------------------------------------------------------------------------

type voteRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		writeError(w, http.StatusBadRequest, "Delta must be 1 or -1.")
		return
	}

	id := chi.URLParam(r, "id")
	existed, err := s.store.AdjustVotes(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to vote")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	artifact, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read votes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "votes": artifact.Votes})
}

// ---------------------------------------------------------------------------
// POST /api/artifacts/{id}/rate
// ---------------------------------------------------------------------------

type rateRequest struct {
	Rating int `json:"rating"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5.")
		return
	}

	id := chi.URLParam(r, "id")
	existed, err := s.store.SetUserRating(r.Context(), id, req.Rating)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to rate artifact")
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "user_rating": req.Rating})
}

// ---------------------------------------------------------------------------
// GET /artifacts/{id}/play
// ---------------------------------------------------------------------------

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load artifact", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(artifact.Document))
}

// ---------------------------------------------------------------------------
// GET /api/status
// ---------------------------------------------------------------------------

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"live": s.live})
}

// writeValidation maps a validation failure to 400 and anything else to 500.
func writeValidation(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Msg)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
