package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// Regeneration replaces a content item's generated fields in place. The
// item keeps its identity (ID, path, lesson link) so existing progress
// records and review schedules still point at it.

type regenerateWorksheetResponse struct {
	Worksheet *content.Worksheet `json:"worksheet"`
	Message   string             `json:"message"`
}

func (s *Server) handleRegenerateWorksheet(w http.ResponseWriter, r *http.Request) {
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
	path, ok := s.ownedPath(w, r, userID, ws.LearningPathID)
	if !ok {
		return
	}

	concept := path.Topic
	lessonContext := ""
	if ws.LessonID != "" {
		if lesson, err := s.store.GetLesson(r.Context(), ws.LessonID); err == nil {
			concept = lesson.Concept
			lessonContext = fmt.Sprintf("%s: %s", lesson.Title, lesson.SimpleExplanation)
		}
	}

	fresh, err := s.generator.CreateWorksheet(r.Context(), concept, ws.Level, lessonContext)
	if err != nil {
		slog.Error("worksheet regeneration failed", "worksheet_id", ws.ID, "error", err)
		writeError(w, http.StatusBadGateway, "worksheet regeneration failed")
		return
	}

	fresh.ID = ws.ID
	fresh.LearningPathID = ws.LearningPathID
	fresh.LessonID = ws.LessonID
	if err := s.store.SaveWorksheet(r.Context(), fresh); err != nil {
		slog.Error("failed to save regenerated worksheet", "worksheet_id", ws.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save worksheet")
		return
	}

	writeJSON(w, http.StatusOK, regenerateWorksheetResponse{
		Worksheet: fresh,
		Message:   fmt.Sprintf("Worksheet regenerated with %d questions", len(fresh.Questions)),
	})
}

type regenerateQuizResponse struct {
	Quiz    *content.Quiz `json:"quiz"`
	Message string        `json:"message"`
}

func (s *Server) handleRegenerateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	quiz, err := s.store.GetQuiz(r.Context(), r.PathValue("quizID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load quiz")
		return
	}
	path, ok := s.ownedPath(w, r, userID, quiz.LearningPathID)
	if !ok {
		return
	}

	concepts := quizConcepts(path, quiz.Level)
	quizType := quiz.Type
	if quizType == "" {
		quizType = "quiz"
	}

	fresh, err := s.generator.CreateQuiz(r.Context(), concepts, quiz.Level, quizType)
	if err != nil {
		slog.Error("quiz regeneration failed", "quiz_id", quiz.ID, "error", err)
		writeError(w, http.StatusBadGateway, "quiz regeneration failed")
		return
	}

	fresh.ID = quiz.ID
	fresh.LearningPathID = quiz.LearningPathID
	if err := s.store.SaveQuiz(r.Context(), fresh); err != nil {
		slog.Error("failed to save regenerated quiz", "quiz_id", quiz.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save quiz")
		return
	}

	writeJSON(w, http.StatusOK, regenerateQuizResponse{
		Quiz:    fresh,
		Message: fmt.Sprintf("Quiz regenerated with %d questions", len(fresh.Questions)),
	})
}

// quizConcepts resolves the concept list for a quiz level: the matching
// milestone's concepts, then the path's key concepts, then the topic.
func quizConcepts(path *content.LearningPath, level content.Level) []string {
	for _, m := range path.Milestones {
		if m.Level == level && len(m.Concepts) > 0 {
			return m.Concepts
		}
	}
	if len(path.KeyConcepts) > 0 {
		return path.KeyConcepts
	}
	return []string{path.Topic}
}
