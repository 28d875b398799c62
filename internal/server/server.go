// Package server exposes the HTTP API: learning path creation, generation
// progress, progress tracking, reviews and worksheet export. User identity
// arrives as an X-User-ID header set by the fronting auth layer; handlers
// treat it as an opaque string.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/generation"
	"github.com/pathforge/pathforge/internal/progress"
	"github.com/pathforge/pathforge/internal/store"
)

// HealthChecker is implemented by backing services the readiness probe
// should verify.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds the dependencies for a Server.
type Config struct {
	Store        store.Store
	Tracker      *progress.Tracker
	Generator    *content.Generator
	Orchestrator *generation.Orchestrator
	Progress     generation.ProgressCache
	Ready        []HealthChecker
}

// Server routes and serves the HTTP API.
type Server struct {
	store     store.Store
	tracker   *progress.Tracker
	generator *content.Generator
	orch      *generation.Orchestrator
	progress  generation.ProgressCache
	ready     []HealthChecker
}

// New creates a Server.
func New(cfg Config) *Server {
	return &Server{
		store:     cfg.Store,
		tracker:   cfg.Tracker,
		generator: cfg.Generator,
		orch:      cfg.Orchestrator,
		progress:  cfg.Progress,
		ready:     cfg.Ready,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/learning-paths", s.handleCreatePath)
	mux.HandleFunc("GET /api/learning-paths", s.handleListPaths)
	mux.HandleFunc("GET /api/learning-paths/{pathID}/progress", s.handleGenerationProgress)
	mux.HandleFunc("GET /api/learning-paths/{pathID}/progress/ws", s.handleGenerationProgressWS)
	mux.HandleFunc("GET /api/learning-paths/{pathID}/content", s.handleListContent)

	mux.HandleFunc("POST /api/progress", s.handleUpdateProgress)
	mux.HandleFunc("GET /api/progress", s.handleProgressSummary)
	mux.HandleFunc("GET /api/reviews/due", s.handleDueReviews)
	mux.HandleFunc("GET /api/worksheets/{worksheetID}/export", s.handleExportWorksheet)
	mux.HandleFunc("POST /api/worksheets/{worksheetID}/regenerate", s.handleRegenerateWorksheet)
	mux.HandleFunc("POST /api/quizzes/{quizID}/regenerate", s.handleRegenerateQuiz)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

// userID extracts the caller's identity, writing a 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
		return "", false
	}
	return id, true
}

// ownedPath loads a learning path and verifies the caller owns it. A
// missing path and a foreign path are both reported as not found.
func (s *Server) ownedPath(w http.ResponseWriter, r *http.Request, userID, pathID string) (*content.LearningPath, bool) {
	path, err := s.store.GetLearningPath(r.Context(), pathID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "learning path not found")
		} else {
			writeError(w, http.StatusInternalServerError, "failed to load learning path")
		}
		return nil, false
	}
	if path.UserID != userID {
		writeError(w, http.StatusNotFound, "learning path not found")
		return nil, false
	}
	return path, true
}

// decodeJSON reads a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.ready {
		if err := check.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
