package progress_test

import (
	"testing"
	"time"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/progress"
	"github.com/pathforge/pathforge/internal/store"
)

func ptr(f float64) *float64 { return &f }

func newTracker(t *testing.T) (*progress.Tracker, *store.MemoryStore) {
	t.Helper()
	contentStore := store.NewMemoryStore()
	return progress.NewTracker(progress.NewMemoryStore(), contentStore), contentStore
}

func TestTracker_UpdateProgress_Upserts(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	first := progress.Update{
		ContentType:          content.TypeLesson,
		LearningPathID:       "p1",
		LessonID:             "l1",
		Status:               progress.StatusInProgress,
		CompletionPercentage: 40,
		TimeSpentMinutes:     10,
	}
	if err := tracker.UpdateProgress(ctx, "u1", first); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	second := first
	second.Status = progress.StatusCompleted
	second.CompletionPercentage = 100
	second.Score = ptr(85)
	if err := tracker.UpdateProgress(ctx, "u1", second); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	summary, err := tracker.GetSummary(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	// Two updates to the same lesson are one record.
	if summary.TotalItems != 1 {
		t.Errorf("total items = %d, want 1 (upsert, not append)", summary.TotalItems)
	}
	if summary.Completed != 1 {
		t.Errorf("completed = %d, want 1", summary.Completed)
	}
}

func TestTracker_UpdateProgress_Validation(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	tests := []struct {
		name   string
		userID string
		update progress.Update
	}{
		{"missing user", "", progress.Update{ContentType: content.TypeLesson, LessonID: "l1", Status: progress.StatusInProgress}},
		{"bad content type", "u1", progress.Update{ContentType: "video", Status: progress.StatusInProgress}},
		{"bad status", "u1", progress.Update{ContentType: content.TypeLesson, LessonID: "l1", Status: "done"}},
		{"missing content id", "u1", progress.Update{ContentType: content.TypeLesson, Status: progress.StatusInProgress}},
		{"id for wrong type", "u1", progress.Update{ContentType: content.TypeQuiz, LessonID: "l1", Status: progress.StatusInProgress}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tracker.UpdateProgress(ctx, tt.userID, tt.update); err == nil {
				t.Error("UpdateProgress() should fail")
			}
		})
	}
}

func TestTracker_CompletionCreatesReviewItem(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	update := progress.Update{
		ContentType:          content.TypeQuiz,
		LearningPathID:       "p1",
		QuizID:               "q1",
		Status:               progress.StatusCompleted,
		CompletionPercentage: 100,
		Score:                ptr(95),
	}
	if err := tracker.UpdateProgress(ctx, "u1", update); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	due, err := tracker.ListDueReviews(ctx, "u1", time.Now().AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("ListDueReviews() error = %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due = %d, want 1 (new item due in 1 day)", len(due))
	}
	// First completion creates the item; the score feeds later reviews.
	if due[0].ReviewCount != 0 {
		t.Errorf("review count = %d, want 0 at creation", due[0].ReviewCount)
	}
	if due[0].DifficultyLevel != 3 {
		t.Errorf("difficulty = %d, want default 3", due[0].DifficultyLevel)
	}
}

func TestTracker_SecondCompletionAdvancesSchedule(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	update := progress.Update{
		ContentType:    content.TypeQuiz,
		LearningPathID: "p1",
		QuizID:         "q1",
		Status:         progress.StatusCompleted,
		Score:          ptr(95),
	}
	for range 2 {
		if err := tracker.UpdateProgress(ctx, "u1", update); err != nil {
			t.Fatalf("UpdateProgress() error = %v", err)
		}
	}

	due, err := tracker.ListDueReviews(ctx, "u1", time.Now().AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("ListDueReviews() error = %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due = %d, want 1", len(due))
	}
	if due[0].ReviewCount != 1 {
		t.Errorf("review count = %d, want 1 after one real review", due[0].ReviewCount)
	}
	// Excellent score eases the item from the default 3.
	if due[0].DifficultyLevel != 2 {
		t.Errorf("difficulty = %d, want 2", due[0].DifficultyLevel)
	}
	if due[0].LastReviewedAt == nil {
		t.Error("last reviewed timestamp not set")
	}
}

func TestTracker_IncompleteUpdateSkipsReview(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	tests := []struct {
		name   string
		update progress.Update
	}{
		{"in progress with score", progress.Update{ContentType: content.TypeLesson, LessonID: "l1", Status: progress.StatusInProgress, Score: ptr(80)}},
		{"completed without score", progress.Update{ContentType: content.TypeLesson, LessonID: "l2", Status: progress.StatusCompleted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tracker.UpdateProgress(ctx, "u1", tt.update); err != nil {
				t.Fatalf("UpdateProgress() error = %v", err)
			}
		})
	}

	due, err := tracker.ListDueReviews(ctx, "u1", time.Now().AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("ListDueReviews() error = %v", err)
	}
	if len(due) != 0 {
		t.Errorf("due = %d, want 0 review items", len(due))
	}
}

func TestTracker_GetSummary_Empty(t *testing.T) {
	tracker, _ := newTracker(t)

	summary, err := tracker.GetSummary(t.Context(), "u1", "no-such-path")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary != (progress.Summary{}) {
		t.Errorf("summary = %+v, want zero value for empty path", summary)
	}
}

func TestTracker_GetSummary_Aggregates(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := t.Context()

	updates := []progress.Update{
		{ContentType: content.TypeLesson, LearningPathID: "p1", LessonID: "l1", Status: progress.StatusCompleted, Score: ptr(90)},
		{ContentType: content.TypeLesson, LearningPathID: "p1", LessonID: "l2", Status: progress.StatusCompleted, Score: ptr(70)},
		{ContentType: content.TypeWorksheet, LearningPathID: "p1", WorksheetID: "w1", Status: progress.StatusInProgress},
		{ContentType: content.TypeQuiz, LearningPathID: "p1", QuizID: "q1", Status: progress.StatusNotStarted},
	}
	for _, u := range updates {
		if err := tracker.UpdateProgress(ctx, "u1", u); err != nil {
			t.Fatalf("UpdateProgress() error = %v", err)
		}
	}

	summary, err := tracker.GetSummary(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary.TotalItems != 4 {
		t.Errorf("total = %d, want 4", summary.TotalItems)
	}
	if summary.Completed != 2 || summary.InProgress != 1 || summary.NotStarted != 1 {
		t.Errorf("breakdown = %d/%d/%d, want 2/1/1", summary.Completed, summary.InProgress, summary.NotStarted)
	}
	if summary.AverageScore != 80 {
		t.Errorf("average score = %v, want 80 (mean of scored items only)", summary.AverageScore)
	}
	if summary.CompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", summary.CompletionRate)
	}
}

func TestTracker_GetRecommendation(t *testing.T) {
	tracker, contentStore := newTracker(t)
	ctx := t.Context()

	path := &content.LearningPath{UserID: "u1", Topic: "golang", Level: content.LevelBeginner}
	if err := contentStore.SaveLearningPath(ctx, path); err != nil {
		t.Fatalf("SaveLearningPath() error = %v", err)
	}

	update := progress.Update{
		ContentType:    content.TypeLesson,
		LearningPathID: path.ID,
		LessonID:       "l1",
		Status:         progress.StatusCompleted,
		Score:          ptr(95),
	}
	if err := tracker.UpdateProgress(ctx, "u1", update); err != nil {
		t.Fatalf("UpdateProgress() error = %v", err)
	}

	rec, err := tracker.GetRecommendation(ctx, "u1", path.ID)
	if err != nil {
		t.Fatalf("GetRecommendation() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetRecommendation() = nil for existing path")
	}
	// 95 average with full completion promotes beginner to intermediate.
	if rec.SuggestedLevel != content.LevelIntermediate {
		t.Errorf("suggested level = %q, want intermediate", rec.SuggestedLevel)
	}
}

func TestTracker_GetRecommendation_PathNotFound(t *testing.T) {
	tracker, _ := newTracker(t)

	rec, err := tracker.GetRecommendation(t.Context(), "u1", "no-such-path")
	if err != nil {
		t.Fatalf("GetRecommendation() error = %v", err)
	}
	if rec != nil {
		t.Errorf("recommendation = %+v, want nil for missing path", rec)
	}
}
