// Package progress tracks per-user learning progress and drives the
// spaced-repetition schedule from completion scores.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pathforge/pathforge/internal/adaptive"
	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// ErrInvalidUpdate marks a progress update rejected during validation.
var ErrInvalidUpdate = errors.New("invalid progress update")

// Status is the progress state of one content item for one user.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates and returns a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid progress status %q", s)
}

// Update is one progress report from a client. Exactly one of LessonID,
// WorksheetID, QuizID or CapstoneID must be set, matching ContentType.
type Update struct {
	ContentType          content.Type `json:"content_type"`
	LearningPathID       string       `json:"learning_path_id,omitempty"`
	LessonID             string       `json:"lesson_id,omitempty"`
	WorksheetID          string       `json:"worksheet_id,omitempty"`
	QuizID               string       `json:"quiz_id,omitempty"`
	CapstoneID           string       `json:"capstone_id,omitempty"`
	Status               Status       `json:"status"`
	CompletionPercentage float64      `json:"completion_percentage"`
	Score                *float64     `json:"score,omitempty"`
	TimeSpentMinutes     int          `json:"time_spent_minutes"`
}

// ContentID returns the id field matching the update's content type.
func (u Update) ContentID() string {
	switch u.ContentType {
	case content.TypeLesson:
		return u.LessonID
	case content.TypeWorksheet:
		return u.WorksheetID
	case content.TypeQuiz:
		return u.QuizID
	case content.TypeCapstone:
		return u.CapstoneID
	}
	return ""
}

// Record is the stored progress state for one (user, content item) pair.
// CompletedAt is set only while Status is completed; a regression back to
// in_progress clears it.
type Record struct {
	UserID               string       `json:"user_id"`
	LearningPathID       string       `json:"learning_path_id,omitempty"`
	ContentType          content.Type `json:"content_type"`
	ContentID            string       `json:"content_id"`
	Status               Status       `json:"status"`
	CompletionPercentage float64      `json:"completion_percentage"`
	Score                *float64     `json:"score,omitempty"`
	TimeSpentMinutes     int          `json:"time_spent_minutes"`
	LastAccessedAt       time.Time    `json:"last_accessed_at"`
	CompletedAt          *time.Time   `json:"completed_at,omitempty"`
}

// Summary aggregates a user's progress across one learning path.
type Summary struct {
	TotalItems     int     `json:"total_items"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	NotStarted     int     `json:"not_started"`
	AverageScore   float64 `json:"average_score"`
	CompletionRate float64 `json:"completion_rate"`
}

// ProgressStore persists progress records and spaced-repetition items.
// Upserts are keyed by (user, content type, content id).
type ProgressStore interface {
	UpsertProgress(ctx context.Context, rec Record) error
	ListProgress(ctx context.Context, userID, pathID string) ([]Record, error)

	GetReviewItem(ctx context.Context, userID, contentID string, contentType content.Type) (*adaptive.SpacedRepetitionItem, error)
	SaveReviewItem(ctx context.Context, item adaptive.SpacedRepetitionItem) error
	ListReviewItems(ctx context.Context, userID string) ([]adaptive.SpacedRepetitionItem, error)
}

// MemoryStore is an in-memory ProgressStore implementation.
type MemoryStore struct {
	records map[string]*Record
	reviews map[string]*adaptive.SpacedRepetitionItem
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		reviews: make(map[string]*adaptive.SpacedRepetitionItem),
	}
}

func progressKey(userID string, contentType content.Type, contentID string) string {
	return userID + "/" + string(contentType) + "/" + contentID
}

func (s *MemoryStore) UpsertProgress(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := rec
	s.records[progressKey(rec.UserID, rec.ContentType, rec.ContentID)] = &clone
	return nil
}

func (s *MemoryStore) ListProgress(_ context.Context, userID, pathID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	for _, rec := range s.records {
		if rec.UserID == userID && rec.LearningPathID == pathID {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (s *MemoryStore) GetReviewItem(_ context.Context, userID, contentID string, contentType content.Type) (*adaptive.SpacedRepetitionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.reviews[progressKey(userID, contentType, contentID)]
	if !ok {
		return nil, fmt.Errorf("review item %s: %w", contentID, store.ErrNotFound)
	}
	clone := *item
	return &clone, nil
}

func (s *MemoryStore) SaveReviewItem(_ context.Context, item adaptive.SpacedRepetitionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := item
	s.reviews[progressKey(item.UserID, item.ContentType, item.ContentID)] = &clone
	return nil
}

func (s *MemoryStore) ListReviewItems(_ context.Context, userID string) ([]adaptive.SpacedRepetitionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []adaptive.SpacedRepetitionItem
	for _, item := range s.reviews {
		if item.UserID == userID {
			items = append(items, *item)
		}
	}
	return items, nil
}
