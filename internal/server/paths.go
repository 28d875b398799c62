package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/generation"
	"github.com/pathforge/pathforge/internal/store"
)

// wsPollInterval is how often the progress stream re-reads the snapshot.
const wsPollInterval = time.Second

type createPathRequest struct {
	Topic          string `json:"topic"`
	Level          string `json:"level"`
	PriorKnowledge string `json:"prior_knowledge"`
	LearningStyle  string `json:"learning_style"`
}

type createPathResponse struct {
	LearningPath *content.LearningPath `json:"learning_path"`
	Counts       store.Counts          `json:"content_counts"`
}

// handleCreatePath generates a learning path skeleton, persists it and
// starts content generation in the background. The response carries the
// skeleton and zero content counts; clients follow the progress endpoints
// to watch generation.
func (s *Server) handleCreatePath(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createPathRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}
	level, err := content.ParseLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.generator.CreateLearningPath(r.Context(), req.Topic, level, req.PriorKnowledge)
	if err != nil {
		slog.Error("learning path generation failed", "user_id", userID, "topic", req.Topic, "error", err)
		writeError(w, http.StatusBadGateway, "learning path generation failed")
		return
	}

	path.UserID = userID
	if err := s.store.SaveLearningPath(r.Context(), path); err != nil {
		slog.Error("failed to save learning path", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save learning path")
		return
	}

	// Content generation outlives this request.
	runCtx := context.WithoutCancel(r.Context())
	go func(path *content.LearningPath, style string) {
		if err := s.orch.Run(runCtx, path, style); err != nil && !errors.Is(err, generation.ErrAlreadyRunning) {
			slog.Error("content generation run failed", "path_id", path.ID, "error", err)
		}
	}(path, req.LearningStyle)

	writeJSON(w, http.StatusCreated, createPathResponse{LearningPath: path, Counts: store.Counts{}})
}

func (s *Server) handleListPaths(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	paths, err := s.store.ListLearningPaths(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list learning paths")
		return
	}
	if paths == nil {
		paths = []*content.LearningPath{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"learning_paths": paths})
}

type generationProgressResponse struct {
	Status      string            `json:"status"`
	CurrentStep string            `json:"current_step,omitempty"`
	Counts      generation.Counts `json:"progress"`
	Error       string            `json:"error,omitempty"`
}

// handleGenerationProgress reports the live generation snapshot for a path.
// When no record exists (never started, or expired after completion) the
// status is "not_found" and the counts reflect what is persisted, so a late
// poller still sees the real totals.
func (s *Server) handleGenerationProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	path, ok := s.ownedPath(w, r, userID, r.PathValue("pathID"))
	if !ok {
		return
	}

	persisted, err := s.store.ContentCounts(r.Context(), path.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read content counts")
		return
	}

	snap, exists, err := s.progress.Get(r.Context(), path.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read generation progress")
		return
	}

	if !exists {
		writeJSON(w, http.StatusOK, generationProgressResponse{
			Status: "not_found",
			Counts: generation.Counts{
				TotalMilestones: len(path.Milestones),
				Lessons:         persisted.Lessons,
				Worksheets:      persisted.Worksheets,
				Quizzes:         persisted.Quizzes,
				Capstones:       persisted.Capstones,
			},
		})
		return
	}

	// The snapshot may lag the store; never report fewer items than are
	// actually persisted.
	snap.Counts.Lessons = max(snap.Counts.Lessons, persisted.Lessons)
	snap.Counts.Worksheets = max(snap.Counts.Worksheets, persisted.Worksheets)
	snap.Counts.Quizzes = max(snap.Counts.Quizzes, persisted.Quizzes)
	snap.Counts.Capstones = max(snap.Counts.Capstones, persisted.Capstones)

	writeJSON(w, http.StatusOK, generationProgressResponse{
		Status:      string(snap.Status),
		CurrentStep: snap.CurrentStep,
		Counts:      snap.Counts,
		Error:       snap.Error,
	})
}

// handleGenerationProgressWS streams progress snapshots over a websocket.
// Each distinct snapshot is sent once; the stream closes after a terminal
// snapshot or once the record expires.
func (s *Server) handleGenerationProgressWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	path, ok := s.ownedPath(w, r, userID, r.PathValue("pathID"))
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "path_id", path.ID, "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	var last *generation.Progress
	seen := false
	for {
		snap, exists, err := s.progress.Get(ctx, path.ID)
		if err != nil {
			conn.Close(websocket.StatusInternalError, "progress read failed")
			return
		}
		if exists {
			seen = true
			if last == nil || *last != snap {
				if err := wsjson.Write(ctx, conn, snap); err != nil {
					return
				}
				snapCopy := snap
				last = &snapCopy
			}
			if snap.Terminal() {
				conn.Close(websocket.StatusNormalClosure, "generation finished")
				return
			}
		} else if seen {
			// Record expired after a terminal snapshot was delivered.
			conn.Close(websocket.StatusNormalClosure, "progress record expired")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type contentListResponse struct {
	LearningPath *content.LearningPath `json:"learning_path"`
	Items        []store.Item          `json:"items"`
	Counts       store.Counts          `json:"counts"`
}

// handleListContent lists the persisted content of a path. Lessons are
// ordered by their position in the milestone concept list; other item types
// keep insertion order.
func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	path, ok := s.ownedPath(w, r, userID, r.PathValue("pathID"))
	if !ok {
		return
	}

	items, err := s.store.ListContent(r.Context(), path.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list content")
		return
	}
	counts, err := s.store.ContentCounts(r.Context(), path.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read content counts")
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Type != content.TypeLesson || items[j].Type != content.TypeLesson {
			return false
		}
		return items[i].OrderIndex < items[j].OrderIndex
	})
	if items == nil {
		items = []store.Item{}
	}

	writeJSON(w, http.StatusOK, contentListResponse{
		LearningPath: path,
		Items:        items,
		Counts:       counts,
	})
}
