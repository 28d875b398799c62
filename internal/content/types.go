// Package content defines the curriculum artifact types and the
// AI-backed generator that produces them.
package content

import (
	"fmt"
	"time"
)

// Level is a learner proficiency level. Levels are ordered:
// beginner < intermediate < advanced < expert.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelExpert       Level = "expert"
)

// Levels lists all levels in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}

// ParseLevel validates and returns a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert:
		return Level(s), nil
	}
	return "", fmt.Errorf("invalid level %q", s)
}

// Type identifies a kind of content item.
type Type string

const (
	TypeLesson    Type = "lesson"
	TypeWorksheet Type = "worksheet"
	TypeQuiz      Type = "quiz"
	TypeCapstone  Type = "capstone"
)

// ParseType validates and returns a content Type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeLesson, TypeWorksheet, TypeQuiz, TypeCapstone:
		return Type(s), nil
	}
	return "", fmt.Errorf("invalid content type %q", s)
}

// Milestone is a leveled phase of a learning path. It is embedded in the
// LearningPath, produced atomically at path creation, and read-only during
// content generation.
type Milestone struct {
	Level         Level    `json:"level"`
	Concepts      []string `json:"concepts"`
	EstimatedTime string   `json:"estimated_time"`
	Prerequisites []string `json:"prerequisites"`
	Outcomes      []string `json:"outcomes"`
}

// LearningPath is the curriculum skeleton for one topic at one level.
// Immutable after creation except for cascading content.
type LearningPath struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Topic          string      `json:"topic"`
	Level          Level       `json:"level"`
	EstimatedHours int         `json:"estimated_hours"`
	Prerequisites  []string    `json:"prerequisites"`
	KeyConcepts    []string    `json:"key_concepts"`
	Milestones     []Milestone `json:"milestones"`
	CreatedAt      time.Time   `json:"created_at"`
}

// StepByStepExample is one worked step inside a lesson.
type StepByStepExample struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Lesson teaches one concept of a milestone. OrderIndex is the concept's
// position in the milestone's concept list.
type Lesson struct {
	ID                 string              `json:"id"`
	LearningPathID     string              `json:"learning_path_id"`
	Title              string              `json:"title"`
	Concept            string              `json:"concept"`
	Level              Level               `json:"level"`
	OrderIndex         int                 `json:"order_index"`
	SimpleExplanation  string              `json:"simple_explanation"`
	DeepExplanation    string              `json:"deep_explanation"`
	RealWorldUseCases  []string            `json:"real_world_use_cases"`
	Analogies          []string            `json:"analogies"`
	VisualModels       string              `json:"visual_models"`
	StepByStepExamples []StepByStepExample `json:"step_by_step_examples"`
	CommonMistakes     []string            `json:"common_mistakes"`
	EstimatedMinutes   int                 `json:"estimated_minutes"`
}

// WorksheetQuestion is one practice question on a worksheet.
// CorrectAnswer is type-dependent: a string for most kinds, an index for
// multiple choice, an array of matches for matching questions.
type WorksheetQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer any      `json:"correct_answer"`
	Points        int      `json:"points"`
}

// Worksheet is a practice set tied to a lesson.
type Worksheet struct {
	ID             string              `json:"id"`
	LearningPathID string              `json:"learning_path_id"`
	LessonID       string              `json:"lesson_id"`
	Title          string              `json:"title"`
	Level          Level               `json:"level"`
	Questions      []WorksheetQuestion `json:"questions"`
	AnswerKey      map[string]any      `json:"answer_key"`
}

// QuizQuestion is one assessment question.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer any      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

// Quiz assesses all concepts of one milestone.
type Quiz struct {
	ID               string         `json:"id"`
	LearningPathID   string         `json:"learning_path_id"`
	Title            string         `json:"title"`
	Level            Level          `json:"level"`
	Type             string         `json:"type"` // "quiz" or "exam"
	Questions        []QuizQuestion `json:"questions"`
	AnswerKey        map[string]any `json:"answer_key"`
	PassingScore     int            `json:"passing_score"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
}

// RubricCriteria is one row of a capstone evaluation rubric.
type RubricCriteria struct {
	Criterion        string `json:"criterion"`
	Excellent        string `json:"excellent"`
	Good             string `json:"good"`
	Satisfactory     string `json:"satisfactory"`
	NeedsImprovement string `json:"needs_improvement"`
	Points           int    `json:"points"`
}

// Capstone is a project generated for advanced and expert milestones.
type Capstone struct {
	ID                  string           `json:"id"`
	LearningPathID      string           `json:"learning_path_id"`
	Title               string           `json:"title"`
	Level               Level            `json:"level"`
	Description         string           `json:"description"`
	Instructions        string           `json:"instructions"`
	Requirements        []string         `json:"requirements"`
	EvaluationRubric    []RubricCriteria `json:"evaluation_rubric"`
	ExtensionChallenges []string         `json:"extension_challenges"`
	EstimatedHours      int              `json:"estimated_hours"`
}
