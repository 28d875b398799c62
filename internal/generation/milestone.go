package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pathforge/pathforge/internal/content"
	"github.com/pathforge/pathforge/internal/store"
)

// ContentCreator is the slice of the content generator the milestone
// generator needs. Satisfied by *content.Generator.
type ContentCreator interface {
	CreateLesson(ctx context.Context, concept string, level content.Level, learningStyle, lessonContext string) (*content.Lesson, error)
	CreateWorksheet(ctx context.Context, concept string, level content.Level, lessonContext string) (*content.Worksheet, error)
	CreateQuiz(ctx context.Context, concepts []string, level content.Level, quizType string) (*content.Quiz, error)
	CreateCapstone(ctx context.Context, topic string, level content.Level, concepts []string) (*content.Capstone, error)
}

// Failure records one piece of content that could not be produced or
// persisted. Failures never abort the rest of the milestone.
type Failure struct {
	Kind    content.Type `json:"kind"`
	Concept string       `json:"concept,omitempty"`
	Reason  string       `json:"reason"`
}

// MilestoneResult enumerates what one milestone run persisted, plus the
// failures absorbed along the way.
type MilestoneResult struct {
	Lessons    []*content.Lesson
	Worksheets []*content.Worksheet
	Quizzes    []*content.Quiz
	Capstones  []*content.Capstone
	Failures   []Failure
}

// Counts converts the result into progress counter deltas.
func (r MilestoneResult) Counts() Counts {
	return Counts{
		Lessons:    len(r.Lessons),
		Worksheets: len(r.Worksheets),
		Quizzes:    len(r.Quizzes),
		Capstones:  len(r.Capstones),
	}
}

// Total returns the number of persisted items.
func (r MilestoneResult) Total() int {
	return len(r.Lessons) + len(r.Worksheets) + len(r.Quizzes) + len(r.Capstones)
}

// MilestoneGenerator produces and persists the content for one milestone:
// a lesson and worksheet per concept, one quiz, and a capstone for
// advanced and expert milestones. Every generation or persistence error is
// caught at its own boundary so one bad item never sinks its siblings.
type MilestoneGenerator struct {
	creator ContentCreator
	store   store.Store
}

// NewMilestoneGenerator creates a milestone generator.
func NewMilestoneGenerator(creator ContentCreator, contentStore store.Store) *MilestoneGenerator {
	return &MilestoneGenerator{creator: creator, store: contentStore}
}

// Generate runs one milestone. A milestone without concepts is skipped
// without any generation calls.
func (g *MilestoneGenerator) Generate(ctx context.Context, pathID string, milestone content.Milestone, pathTitle, pathTopic, learningStyle string) MilestoneResult {
	var result MilestoneResult

	if len(milestone.Concepts) == 0 {
		slog.Error("milestone has no concepts", "path_id", pathID, "level", milestone.Level)
		return result
	}

	slog.Info("generating milestone content",
		"path_id", pathID,
		"level", milestone.Level,
		"concepts", len(milestone.Concepts),
	)

	for i, concept := range milestone.Concepts {
		lesson, err := g.creator.CreateLesson(ctx, concept, milestone.Level, learningStyle,
			fmt.Sprintf("Part of %s - %s level", pathTitle, milestone.Level))
		if err != nil {
			slog.Error("lesson generation failed", "concept", concept, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeLesson, Concept: concept, Reason: err.Error()})
			continue
		}

		lesson.LearningPathID = pathID
		lesson.OrderIndex = i
		if err := g.store.SaveLesson(ctx, lesson); err != nil {
			slog.Error("lesson save failed", "concept", concept, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeLesson, Concept: concept, Reason: err.Error()})
			continue
		}
		result.Lessons = append(result.Lessons, lesson)

		// Worksheet only when its lesson persisted: it references the
		// lesson and builds on the lesson's explanation.
		ws, err := g.creator.CreateWorksheet(ctx, concept, milestone.Level,
			fmt.Sprintf("%s: %s", lesson.Title, lesson.SimpleExplanation))
		if err != nil {
			slog.Error("worksheet generation failed", "concept", concept, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeWorksheet, Concept: concept, Reason: err.Error()})
			continue
		}

		ws.LearningPathID = pathID
		ws.LessonID = lesson.ID
		if err := g.store.SaveWorksheet(ctx, ws); err != nil {
			slog.Error("worksheet save failed", "concept", concept, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeWorksheet, Concept: concept, Reason: err.Error()})
			continue
		}
		result.Worksheets = append(result.Worksheets, ws)
	}

	quiz, err := g.creator.CreateQuiz(ctx, milestone.Concepts, milestone.Level, "quiz")
	if err != nil {
		slog.Error("quiz generation failed", "level", milestone.Level, "error", err)
		result.Failures = append(result.Failures, Failure{Kind: content.TypeQuiz, Reason: err.Error()})
	} else {
		quiz.LearningPathID = pathID
		if err := g.store.SaveQuiz(ctx, quiz); err != nil {
			slog.Error("quiz save failed", "level", milestone.Level, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeQuiz, Reason: err.Error()})
		} else {
			result.Quizzes = append(result.Quizzes, quiz)
		}
	}

	if milestone.Level == content.LevelAdvanced || milestone.Level == content.LevelExpert {
		capstone, err := g.creator.CreateCapstone(ctx, pathTopic, milestone.Level, milestone.Concepts)
		if err != nil {
			slog.Error("capstone generation failed", "level", milestone.Level, "error", err)
			result.Failures = append(result.Failures, Failure{Kind: content.TypeCapstone, Reason: err.Error()})
		} else {
			capstone.LearningPathID = pathID
			if err := g.store.SaveCapstone(ctx, capstone); err != nil {
				slog.Error("capstone save failed", "level", milestone.Level, "error", err)
				result.Failures = append(result.Failures, Failure{Kind: content.TypeCapstone, Reason: err.Error()})
			} else {
				result.Capstones = append(result.Capstones, capstone)
			}
		}
	}

	slog.Info("milestone content generated",
		"path_id", pathID,
		"level", milestone.Level,
		"lessons", len(result.Lessons),
		"worksheets", len(result.Worksheets),
		"quizzes", len(result.Quizzes),
		"capstones", len(result.Capstones),
		"failures", len(result.Failures),
	)
	return result
}
