package adaptive

import (
	"math"
	"time"

	"github.com/pathforge/pathforge/internal/content"
)

// PerformanceBucket is the coarse score category driving difficulty
// adjustment after a review.
type PerformanceBucket string

const (
	BucketExcellent PerformanceBucket = "excellent"
	BucketGood      PerformanceBucket = "good"
	BucketFair      PerformanceBucket = "fair"
	BucketPoor      PerformanceBucket = "poor"
)

// BucketForScore maps a 0-100 score to a performance bucket.
func BucketForScore(score float64) PerformanceBucket {
	switch {
	case score >= 90:
		return BucketExcellent
	case score >= 75:
		return BucketGood
	case score >= 60:
		return BucketFair
	default:
		return BucketPoor
	}
}

const defaultDifficulty = 3

// SpacedRepetitionItem tracks one content item's review schedule for one
// user. DifficultyLevel runs 1 (easiest to retain) to 5 (hardest).
// NextReviewDate is always derived via NextReviewDate(), never set directly.
type SpacedRepetitionItem struct {
	UserID          string       `json:"user_id"`
	ContentID       string       `json:"content_id"`
	ContentType     content.Type `json:"content_type"`
	DifficultyLevel int          `json:"difficulty_level"`
	NextReviewDate  time.Time    `json:"next_review_date"`
	ReviewCount     int          `json:"review_count"`
	LastReviewedAt  *time.Time   `json:"last_reviewed_at"`
}

// NextReviewDate computes when an item is next due. The first three reviews
// follow a fixed ladder (1, 3, 7 days); after that the interval grows
// exponentially, scaled so that easier items (lower difficulty) wait longer:
// difficulty 1 multiplies the base by 1.8, difficulty 5 by 1.0.
//
// Callers pass the post-increment review count on every real review;
// reviewCount 0 occurs only at item creation. Changing that convention
// shifts every interval by one tier.
func NextReviewDate(difficulty, reviewCount int, lastDate *time.Time) time.Time {
	var interval int
	switch {
	case reviewCount == 0:
		interval = 1
	case reviewCount == 1:
		interval = 3
	case reviewCount == 2:
		interval = 7
	default:
		base := math.Pow(2, float64(reviewCount-2))
		multiplier := 1 + float64(5-difficulty)*0.2
		interval = int(math.Floor(base * multiplier))
	}

	from := time.Now()
	if lastDate != nil {
		from = *lastDate
	}
	return from.AddDate(0, 0, interval)
}

// NewSpacedRepetitionItem creates the initial schedule entry for a content
// item, due one day out.
func NewSpacedRepetitionItem(userID, contentID string, contentType content.Type) SpacedRepetitionItem {
	return SpacedRepetitionItem{
		UserID:          userID,
		ContentID:       contentID,
		ContentType:     contentType,
		DifficultyLevel: defaultDifficulty,
		NextReviewDate:  NextReviewDate(defaultDifficulty, 0, nil),
		ReviewCount:     0,
		LastReviewedAt:  nil,
	}
}

// UpdateSpacedRepetition applies one review outcome: excellent eases the
// item by one, good leaves it, fair hardens by one, poor by two, clamped to
// [1,5]. The review count increments unconditionally and the next review
// date is recomputed from the new state.
func UpdateSpacedRepetition(item SpacedRepetitionItem, bucket PerformanceBucket) SpacedRepetitionItem {
	difficulty := item.DifficultyLevel
	switch bucket {
	case BucketExcellent:
		difficulty = max(1, difficulty-1)
	case BucketGood:
		// unchanged
	case BucketFair:
		difficulty = min(5, difficulty+1)
	case BucketPoor:
		difficulty = min(5, difficulty+2)
	}

	now := time.Now()
	item.DifficultyLevel = difficulty
	item.ReviewCount++
	item.LastReviewedAt = &now
	item.NextReviewDate = NextReviewDate(difficulty, item.ReviewCount, &now)
	return item
}

// ItemsDueForReview returns the items whose next review date has arrived
// (inclusive of now). Pure; order of the input is preserved.
func ItemsDueForReview(items []SpacedRepetitionItem, now time.Time) []SpacedRepetitionItem {
	due := make([]SpacedRepetitionItem, 0, len(items))
	for _, item := range items {
		if !item.NextReviewDate.After(now) {
			due = append(due, item)
		}
	}
	return due
}
