package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// fakeCreator is a scripted ContentCreator. Concepts listed in the fail
// sets produce errors; everything else succeeds with minimal artifacts.
type fakeCreator struct {
	failLessons    map[string]bool
	failWorksheets map[string]bool
	failQuiz       bool
	failCapstone   bool
	calls          int
}

func (f *fakeCreator) CreateLesson(_ context.Context, concept string, level content.Level, _, _ string) (*content.Lesson, error) {
	f.calls++
	if f.failLessons[concept] {
		return nil, fmt.Errorf("lesson generation failed for %s", concept)
	}
	return &content.Lesson{Title: "Lesson: " + concept, Concept: concept, Level: level, SimpleExplanation: "short"}, nil
}

func (f *fakeCreator) CreateWorksheet(_ context.Context, concept string, level content.Level, _ string) (*content.Worksheet, error) {
	f.calls++
	if f.failWorksheets[concept] {
		return nil, fmt.Errorf("worksheet generation failed for %s", concept)
	}
	return &content.Worksheet{Title: "Worksheet: " + concept, Level: level}, nil
}

func (f *fakeCreator) CreateQuiz(_ context.Context, _ []string, level content.Level, quizType string) (*content.Quiz, error) {
	f.calls++
	if f.failQuiz {
		return nil, errors.New("quiz generation failed")
	}
	return &content.Quiz{Title: "Quiz", Level: level, Type: quizType}, nil
}

func (f *fakeCreator) CreateCapstone(_ context.Context, topic string, level content.Level, _ []string) (*content.Capstone, error) {
	f.calls++
	if f.failCapstone {
		return nil, errors.New("capstone generation failed")
	}
	return &content.Capstone{Title: "Capstone: " + topic, Level: level}, nil
}

func savedPath(t *testing.T, s store.Store, milestones ...content.Milestone) *content.LearningPath {
	t.Helper()
	path := &content.LearningPath{
		UserID:     "u1",
		Title:      "Go from Zero",
		Topic:      "golang",
		Level:      content.LevelBeginner,
		Milestones: milestones,
	}
	if err := s.SaveLearningPath(t.Context(), path); err != nil {
		t.Fatalf("SaveLearningPath() error = %v", err)
	}
	return path
}

func TestMilestoneGenerator_EmptyConceptsShortCircuits(t *testing.T) {
	creator := &fakeCreator{}
	s := store.NewMemoryStore()
	g := NewMilestoneGenerator(creator, s)

	result := g.Generate(t.Context(), "p1", content.Milestone{Level: content.LevelBeginner}, "T", "topic", "")

	if creator.calls != 0 {
		t.Errorf("creator calls = %d, want 0 for empty milestone", creator.calls)
	}
	if result.Total() != 0 || len(result.Failures) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestMilestoneGenerator_LessonFailureIsIsolated(t *testing.T) {
	creator := &fakeCreator{failLessons: map[string]bool{"B": true}}
	s := store.NewMemoryStore()
	g := NewMilestoneGenerator(creator, s)
	path := savedPath(t, s)

	milestone := content.Milestone{Level: content.LevelBeginner, Concepts: []string{"A", "B", "C"}}
	result := g.Generate(t.Context(), path.ID, milestone, path.Title, path.Topic, "")

	if len(result.Lessons) != 2 {
		t.Errorf("lessons = %d, want 2 (A and C survive B's failure)", len(result.Lessons))
	}
	if len(result.Worksheets) != 2 {
		t.Errorf("worksheets = %d, want 2", len(result.Worksheets))
	}
	if len(result.Quizzes) != 1 {
		t.Errorf("quizzes = %d, want 1", len(result.Quizzes))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(result.Failures))
	}
	if result.Failures[0].Kind != content.TypeLesson || result.Failures[0].Concept != "B" {
		t.Errorf("failure = %+v, want lesson failure for B", result.Failures[0])
	}

	// Surviving lessons keep their concept positions.
	for _, lesson := range result.Lessons {
		want := map[string]int{"A": 0, "C": 2}[lesson.Concept]
		if lesson.OrderIndex != want {
			t.Errorf("lesson %s order = %d, want %d", lesson.Concept, lesson.OrderIndex, want)
		}
	}
}

func TestMilestoneGenerator_WorksheetFailureKeepsLesson(t *testing.T) {
	creator := &fakeCreator{failWorksheets: map[string]bool{"A": true}}
	s := store.NewMemoryStore()
	g := NewMilestoneGenerator(creator, s)
	path := savedPath(t, s)

	milestone := content.Milestone{Level: content.LevelBeginner, Concepts: []string{"A"}}
	result := g.Generate(t.Context(), path.ID, milestone, path.Title, path.Topic, "")

	if len(result.Lessons) != 1 {
		t.Errorf("lessons = %d, want 1", len(result.Lessons))
	}
	if len(result.Worksheets) != 0 {
		t.Errorf("worksheets = %d, want 0", len(result.Worksheets))
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != content.TypeWorksheet {
		t.Errorf("failures = %+v, want one worksheet failure", result.Failures)
	}
}

func TestMilestoneGenerator_CapstoneOnlyForAdvancedAndExpert(t *testing.T) {
	tests := []struct {
		level        content.Level
		wantCapstone bool
	}{
		{content.LevelBeginner, false},
		{content.LevelIntermediate, false},
		{content.LevelAdvanced, true},
		{content.LevelExpert, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			creator := &fakeCreator{}
			s := store.NewMemoryStore()
			g := NewMilestoneGenerator(creator, s)
			path := savedPath(t, s)

			milestone := content.Milestone{Level: tt.level, Concepts: []string{"A"}}
			result := g.Generate(t.Context(), path.ID, milestone, path.Title, path.Topic, "")

			got := len(result.Capstones) == 1
			if got != tt.wantCapstone {
				t.Errorf("capstone generated = %v, want %v", got, tt.wantCapstone)
			}
		})
	}
}

func TestMilestoneGenerator_QuizFailureRecorded(t *testing.T) {
	creator := &fakeCreator{failQuiz: true}
	s := store.NewMemoryStore()
	g := NewMilestoneGenerator(creator, s)
	path := savedPath(t, s)

	milestone := content.Milestone{Level: content.LevelBeginner, Concepts: []string{"A"}}
	result := g.Generate(t.Context(), path.ID, milestone, path.Title, path.Topic, "")

	if len(result.Quizzes) != 0 {
		t.Errorf("quizzes = %d, want 0", len(result.Quizzes))
	}
	if len(result.Lessons) != 1 || len(result.Worksheets) != 1 {
		t.Errorf("lessons/worksheets = %d/%d, want 1/1 despite quiz failure", len(result.Lessons), len(result.Worksheets))
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != content.TypeQuiz {
		t.Errorf("failures = %+v, want one quiz failure", result.Failures)
	}
}
