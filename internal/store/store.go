// Package store persists learning paths and their generated content.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pathforge/pathforge/internal/content"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Item is a summary row for one piece of generated content.
type Item struct {
	ID         string       `json:"id"`
	Type       content.Type `json:"type"`
	Title      string       `json:"title"`
	Concept    string       `json:"concept,omitempty"`
	Level      content.Level `json:"level"`
	OrderIndex int          `json:"order_index"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Counts tallies stored content per type for one learning path.
type Counts struct {
	Lessons    int `json:"lessons"`
	Worksheets int `json:"worksheets"`
	Quizzes    int `json:"quizzes"`
	Capstones  int `json:"capstones"`
}

// Total returns the number of content items across all types.
func (c Counts) Total() int {
	return c.Lessons + c.Worksheets + c.Quizzes + c.Capstones
}

// Store persists learning paths and generated content. Save methods assign
// an ID when the record carries none.
type Store interface {
	SaveLearningPath(ctx context.Context, path *content.LearningPath) error
	GetLearningPath(ctx context.Context, id string) (*content.LearningPath, error)
	ListLearningPaths(ctx context.Context, userID string) ([]*content.LearningPath, error)

	SaveLesson(ctx context.Context, lesson *content.Lesson) error
	SaveWorksheet(ctx context.Context, ws *content.Worksheet) error
	SaveQuiz(ctx context.Context, quiz *content.Quiz) error
	SaveCapstone(ctx context.Context, capstone *content.Capstone) error

	GetLesson(ctx context.Context, id string) (*content.Lesson, error)
	GetWorksheet(ctx context.Context, id string) (*content.Worksheet, error)
	GetQuiz(ctx context.Context, id string) (*content.Quiz, error)
	ListContent(ctx context.Context, pathID string) ([]Item, error)
	ContentCounts(ctx context.Context, pathID string) (Counts, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	paths      map[string]*content.LearningPath
	lessons    map[string]*content.Lesson
	worksheets map[string]*content.Worksheet
	quizzes    map[string]*content.Quiz
	capstones  map[string]*content.Capstone
	items      map[string][]Item // keyed by learning path ID
	mu         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		paths:      make(map[string]*content.LearningPath),
		lessons:    make(map[string]*content.Lesson),
		worksheets: make(map[string]*content.Worksheet),
		quizzes:    make(map[string]*content.Quiz),
		capstones:  make(map[string]*content.Capstone),
		items:      make(map[string][]Item),
	}
}

func (s *MemoryStore) SaveLearningPath(_ context.Context, path *content.LearningPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path.ID == "" {
		path.ID = NewID()
	}
	if path.CreatedAt.IsZero() {
		path.CreatedAt = time.Now()
	}
	clone := *path
	s.paths[path.ID] = &clone
	return nil
}

func (s *MemoryStore) GetLearningPath(_ context.Context, id string) (*content.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.paths[id]
	if !ok {
		return nil, fmt.Errorf("learning path %s: %w", id, ErrNotFound)
	}
	clone := *path
	return &clone, nil
}

func (s *MemoryStore) ListLearningPaths(_ context.Context, userID string) ([]*content.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []*content.LearningPath
	for _, path := range s.paths {
		if path.UserID == userID {
			clone := *path
			paths = append(paths, &clone)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].CreatedAt.Before(paths[j].CreatedAt)
	})
	return paths, nil
}

func (s *MemoryStore) SaveLesson(_ context.Context, lesson *content.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lesson.ID == "" {
		lesson.ID = NewID()
	}
	clone := *lesson
	s.lessons[lesson.ID] = &clone
	s.addItem(lesson.LearningPathID, Item{
		ID:         lesson.ID,
		Type:       content.TypeLesson,
		Title:      lesson.Title,
		Concept:    lesson.Concept,
		Level:      lesson.Level,
		OrderIndex: lesson.OrderIndex,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (s *MemoryStore) SaveWorksheet(_ context.Context, ws *content.Worksheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = NewID()
	}
	clone := *ws
	s.worksheets[ws.ID] = &clone
	s.addItem(ws.LearningPathID, Item{
		ID:        ws.ID,
		Type:      content.TypeWorksheet,
		Title:     ws.Title,
		Level:     ws.Level,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStore) SaveQuiz(_ context.Context, quiz *content.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quiz.ID == "" {
		quiz.ID = NewID()
	}
	clone := *quiz
	s.quizzes[quiz.ID] = &clone
	s.addItem(quiz.LearningPathID, Item{
		ID:        quiz.ID,
		Type:      content.TypeQuiz,
		Title:     quiz.Title,
		Level:     quiz.Level,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStore) SaveCapstone(_ context.Context, capstone *content.Capstone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if capstone.ID == "" {
		capstone.ID = NewID()
	}
	clone := *capstone
	s.capstones[capstone.ID] = &clone
	s.addItem(capstone.LearningPathID, Item{
		ID:        capstone.ID,
		Type:      content.TypeCapstone,
		Title:     capstone.Title,
		Level:     capstone.Level,
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStore) GetLesson(_ context.Context, id string) (*content.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lesson, ok := s.lessons[id]
	if !ok {
		return nil, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	clone := *lesson
	return &clone, nil
}

func (s *MemoryStore) GetWorksheet(_ context.Context, id string) (*content.Worksheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.worksheets[id]
	if !ok {
		return nil, fmt.Errorf("worksheet %s: %w", id, ErrNotFound)
	}
	clone := *ws
	return &clone, nil
}

func (s *MemoryStore) GetQuiz(_ context.Context, id string) (*content.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	clone := *quiz
	return &clone, nil
}

func (s *MemoryStore) ListContent(_ context.Context, pathID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.items[pathID]))
	copy(items, s.items[pathID])
	return items, nil
}

func (s *MemoryStore) ContentCounts(_ context.Context, pathID string) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts Counts
	for _, item := range s.items[pathID] {
		switch item.Type {
		case content.TypeLesson:
			counts.Lessons++
		case content.TypeWorksheet:
			counts.Worksheets++
		case content.TypeQuiz:
			counts.Quizzes++
		case content.TypeCapstone:
			counts.Capstones++
		}
	}
	return counts, nil
}

// addItem requires s.mu held. Saving under an existing ID replaces the
// listing entry in place so regeneration never inflates counts.
func (s *MemoryStore) addItem(pathID string, item Item) {
	for i, existing := range s.items[pathID] {
		if existing.ID == item.ID {
			item.CreatedAt = existing.CreatedAt
			s.items[pathID][i] = item
			return
		}
	}
	s.items[pathID] = append(s.items[pathID], item)
}

// NewID returns a random 32-char hex identifier.
func NewID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
