// Package http exposes the payflow engine as a JSON API. The host in
// front of it owns rendering; this adapter only moves outcomes across
// the wire.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/payflowkr/payflow/internal/logging"
	"github.com/payflowkr/payflow/pkg/domain"
)

// Engine defines the interface the HTTP adapter needs from the core.
type Engine interface {
	HandleWithFallback(ctx context.Context, sessionID, text string) (*domain.Outcome, error)
	Context(ctx context.Context, sessionID string) (*domain.ScenarioContext, error)
	Reset(ctx context.Context, sessionID string) error
}

// Server holds the handler dependencies.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// MessageRequest is the body of POST /sessions/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.Healthz)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/messages", s.PostMessage)
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Healthz reports liveness.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PostMessage handles one conversational turn.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("invalid request body", "err", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	out, err := s.engine.HandleWithFallback(r.Context(), sessionID, body.Text)
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		http.Error(w, "internal failure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSession returns the stored scenario context for inspection.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sc, err := s.engine.Context(r.Context(), sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Error("context load failed", "session_id", sessionID, "err", err)
		http.Error(w, "internal failure", http.StatusInternalServerError)
		return
	}
	if sc == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteSession clears the session's scenario context.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.engine.Reset(r.Context(), sessionID); err != nil {
		s.logger.Error("session reset failed", "session_id", sessionID, "err", err)
		http.Error(w, "internal failure", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}
