package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pathforge/pathforge/internal/adaptive"
	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// PathReader is the slice of the content store the tracker needs:
// resolving a learning path's level for recommendations.
type PathReader interface {
	GetLearningPath(ctx context.Context, id string) (*content.LearningPath, error)
}

// Tracker applies progress updates, keeps the spaced-repetition schedule
// in step with completions, and answers summary and recommendation queries.
type Tracker struct {
	store ProgressStore
	paths PathReader
}

// NewTracker creates a progress tracker.
func NewTracker(progressStore ProgressStore, paths PathReader) *Tracker {
	return &Tracker{store: progressStore, paths: paths}
}

// UpdateProgress upserts the progress record for one content item and, when
// the item is completed with a score, creates or advances its
// spaced-repetition entry.
func (t *Tracker) UpdateProgress(ctx context.Context, userID string, update Update) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidUpdate)
	}
	if _, err := content.ParseType(string(update.ContentType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if _, err := ParseStatus(string(update.Status)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	contentID := update.ContentID()
	if contentID == "" {
		return fmt.Errorf("%w: missing content id for type %s", ErrInvalidUpdate, update.ContentType)
	}

	now := time.Now()
	rec := Record{
		UserID:               userID,
		LearningPathID:       update.LearningPathID,
		ContentType:          update.ContentType,
		ContentID:            contentID,
		Status:               update.Status,
		CompletionPercentage: update.CompletionPercentage,
		Score:                update.Score,
		TimeSpentMinutes:     update.TimeSpentMinutes,
		LastAccessedAt:       now,
	}
	if update.Status == StatusCompleted {
		rec.CompletedAt = &now
	}

	if err := t.store.UpsertProgress(ctx, rec); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	if update.Status == StatusCompleted && update.Score != nil {
		if err := t.recordReview(ctx, userID, contentID, update.ContentType, *update.Score); err != nil {
			return fmt.Errorf("update review schedule: %w", err)
		}
	}
	return nil
}

func (t *Tracker) recordReview(ctx context.Context, userID, contentID string, contentType content.Type, score float64) error {
	existing, err := t.store.GetReviewItem(ctx, userID, contentID, contentType)
	switch {
	case err == nil:
		updated := adaptive.UpdateSpacedRepetition(*existing, adaptive.BucketForScore(score))
		return t.store.SaveReviewItem(ctx, updated)
	case errors.Is(err, store.ErrNotFound):
		item := adaptive.NewSpacedRepetitionItem(userID, contentID, contentType)
		return t.store.SaveReviewItem(ctx, item)
	default:
		return err
	}
}

// GetSummary aggregates the user's progress on one learning path. A path
// with no progress yields the zero summary, not an error.
func (t *Tracker) GetSummary(ctx context.Context, userID, pathID string) (Summary, error) {
	records, err := t.store.ListProgress(ctx, userID, pathID)
	if err != nil {
		return Summary{}, fmt.Errorf("list progress: %w", err)
	}
	if len(records) == 0 {
		return Summary{}, nil
	}

	var summary Summary
	summary.TotalItems = len(records)
	var scoreSum float64
	var scored int
	for _, rec := range records {
		switch rec.Status {
		case StatusCompleted:
			summary.Completed++
		case StatusInProgress:
			summary.InProgress++
		}
		if rec.Score != nil {
			scoreSum += *rec.Score
			scored++
		}
	}
	summary.NotStarted = summary.TotalItems - summary.Completed - summary.InProgress
	if scored > 0 {
		summary.AverageScore = scoreSum / float64(scored)
	}
	summary.CompletionRate = float64(summary.Completed) / float64(summary.TotalItems)
	return summary, nil
}

// GetRecommendation derives the difficulty model's advice for the user on
// one learning path. Returns nil (no error) when the path does not exist.
// Time spent is estimated at 30 minutes per completed item.
func (t *Tracker) GetRecommendation(ctx context.Context, userID, pathID string) (*adaptive.Recommendation, error) {
	summary, err := t.GetSummary(ctx, userID, pathID)
	if err != nil {
		return nil, err
	}

	path, err := t.paths.GetLearningPath(ctx, pathID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get learning path: %w", err)
	}

	rec := adaptive.Recommend(path.Level, adaptive.PerformanceMetrics{
		AverageScore:   summary.AverageScore,
		CompletionRate: summary.CompletionRate,
		TimeSpent:      summary.Completed * 30,
		Attempts:       summary.Completed,
	})
	return &rec, nil
}

// ListDueReviews returns the user's spaced-repetition items due at now,
// inclusive.
func (t *Tracker) ListDueReviews(ctx context.Context, userID string, now time.Time) ([]adaptive.SpacedRepetitionItem, error) {
	items, err := t.store.ListReviewItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	return adaptive.ItemsDueForReview(items, now), nil
}
