// Package adaptive holds the pure mastery functions: the difficulty model
// that recommends level adjustments and the spaced-repetition scheduler.
package adaptive

import "github.com/pathforge/pathforge/internal/content"

// PerformanceMetrics summarizes a learner's performance on a path.
type PerformanceMetrics struct {
	AverageScore   float64 // 0-100
	CompletionRate float64 // 0-1
	TimeSpent      int     // minutes
	Attempts       int
}

// AdjustLevel returns the level one step up when the learner is excelling
// (average score >= 90 and completion rate >= 0.9), one step down when
// struggling (score < 60 and rate < 0.6), and ok=false when no adjustment
// applies. Already at the top or bottom of the scale is a no-op, not an
// error. The two conditions cannot both hold.
func AdjustLevel(current content.Level, perf PerformanceMetrics) (content.Level, bool) {
	if perf.AverageScore >= 90 && perf.CompletionRate >= 0.9 {
		switch current {
		case content.LevelBeginner:
			return content.LevelIntermediate, true
		case content.LevelIntermediate:
			return content.LevelAdvanced, true
		case content.LevelAdvanced:
			return content.LevelExpert, true
		}
		return "", false // already at expert
	}

	if perf.AverageScore < 60 && perf.CompletionRate < 0.6 {
		switch current {
		case content.LevelExpert:
			return content.LevelAdvanced, true
		case content.LevelAdvanced:
			return content.LevelIntermediate, true
		case content.LevelIntermediate:
			return content.LevelBeginner, true
		}
		return "", false // already at beginner
	}

	return "", false
}

// Recommendation is the difficulty model's advice for a learner.
type Recommendation struct {
	SuggestedLevel content.Level `json:"suggested_level"`
	NeedsReview    bool          `json:"needs_review"`
	FocusAreas     []string      `json:"focus_areas"`
}

// Recommend derives a recommendation from the current level and performance.
// FocusAreas entries are appended in a fixed order; each threshold is tested
// independently.
func Recommend(current content.Level, perf PerformanceMetrics) Recommendation {
	suggested := current
	if next, ok := AdjustLevel(current, perf); ok {
		suggested = next
	}

	rec := Recommendation{
		SuggestedLevel: suggested,
		NeedsReview:    perf.AverageScore < 70,
		FocusAreas:     []string{},
	}

	if perf.AverageScore < 60 {
		rec.FocusAreas = append(rec.FocusAreas, "Fundamental concepts need reinforcement")
	}
	if perf.CompletionRate < 0.7 {
		rec.FocusAreas = append(rec.FocusAreas, "Practice more exercises")
	}
	if perf.TimeSpent < 30 {
		rec.FocusAreas = append(rec.FocusAreas, "Spend more time on each concept")
	}

	return rec
}
