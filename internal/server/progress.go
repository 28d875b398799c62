package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pathforge/pathforge/internal/adaptive"
	"github.com/pathforge/pathforge/internal/export"
	"github.com/pathforge/pathforge/internal/progress"
	"github.com/pathforge/pathforge/internal/store"
)

// handleUpdateProgress records a progress update and, on completion with a
// score, advances the spaced-repetition schedule.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var update progress.Update
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tracker.UpdateProgress(r.Context(), userID, update); err != nil {
		if errors.Is(err, progress.ErrInvalidUpdate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("failed to update progress", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update progress")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type progressSummaryResponse struct {
	Summary        progress.Summary         `json:"summary"`
	Recommendation *adaptive.Recommendation `json:"recommendation"`
}

// handleProgressSummary aggregates the caller's progress on one path and
// derives a difficulty recommendation. The recommendation is null when the
// path does not exist.
func (s *Server) handleProgressSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	pathID := r.URL.Query().Get("path_id")
	if pathID == "" {
		writeError(w, http.StatusBadRequest, "path_id query parameter is required")
		return
	}

	summary, err := s.tracker.GetSummary(r.Context(), userID, pathID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to summarize progress")
		return
	}
	rec, err := s.tracker.GetRecommendation(r.Context(), userID, pathID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to derive recommendation")
		return
	}

	writeJSON(w, http.StatusOK, progressSummaryResponse{Summary: summary, Recommendation: rec})
}

// handleDueReviews lists the caller's spaced-repetition items due now.
func (s *Server) handleDueReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	items, err := s.tracker.ListDueReviews(r.Context(), userID, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list due reviews")
		return
	}
	if items == nil {
		items = []adaptive.SpacedRepetitionItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": items,
		"count":   len(items),
	})
}

// handleExportWorksheet streams a worksheet as an XLSX workbook. Ownership
// is checked through the worksheet's learning path.
func (s *Server) handleExportWorksheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	ws, err := s.store.GetWorksheet(r.Context(), r.PathValue("worksheetID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "worksheet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load worksheet")
		return
	}
	if _, ok := s.ownedPath(w, r, userID, ws.LearningPathID); !ok {
		return
	}

	filename := ws.Title
	if filename == "" {
		filename = ws.ID
	}
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	if err := export.WorksheetXLSX(ws, w); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("worksheet export failed", "worksheet_id", ws.ID, "error", err)
	}
}
