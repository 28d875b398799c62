package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pathforge/pathforge/internal/ai"
)

const (
	worksheetMaxAttempts = 2
	worksheetMinValid    = 5
	quizMaxAttempts      = 3
	quizMinQuestions     = 8
	examMinQuestions     = 12
	quizFloorQuestions   = 5
)

var titleCaser = cases.Title(language.English)

// GeneratorConfig holds dependencies for a content Generator.
type GeneratorConfig struct {
	Provider ai.Provider
	Usage    ai.UsageRecorder // optional; token accounting per user
	UserID   string
}

// Generator produces curriculum artifacts through a generation provider.
// Each Create method sends one semantic prompt, strips markdown fences from
// the reply, schema-validates it, and decodes it into a typed artifact.
type Generator struct {
	provider ai.Provider
	usage    ai.UsageRecorder
	userID   string
}

// NewGenerator creates a content generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{
		provider: cfg.Provider,
		usage:    cfg.Usage,
		userID:   cfg.UserID,
	}
}

func (g *Generator) generate(ctx context.Context, prompt, system string, maxTokens int, temperature float64) (string, error) {
	resp, err := ai.GenerateText(ctx, g.provider, prompt, system, maxTokens, temperature)
	if err != nil {
		return "", err
	}
	if g.usage != nil {
		if err := g.usage.Record(g.userID, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "user_id", g.userID, "error", err)
		}
	}
	return stripFences(resp.Content), nil
}

// stripFences removes a leading/trailing markdown code fence, which
// providers frequently wrap around JSON despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// CreateLearningPath generates the path skeleton: title, description, key
// concepts and the ordered milestone list. ID and owner are left for the
// caller to assign at persistence time.
func (g *Generator) CreateLearningPath(ctx context.Context, topic string, level Level, priorKnowledge string) (*LearningPath, error) {
	payload, err := g.generate(ctx,
		learningPathPrompt(topic, level, priorKnowledge),
		"You are an expert educational content creator. Generate structured, comprehensive learning paths that are progressive and well-organized. Always respond with valid JSON only, no additional text.",
		3000, 0.7)
	if err != nil {
		return nil, fmt.Errorf("generate learning path: %w", err)
	}

	if err := validateArtifact("learning_path", payload); err != nil {
		return nil, fmt.Errorf("generate learning path: %w", err)
	}

	var path LearningPath
	if err := json.Unmarshal([]byte(payload), &path); err != nil {
		return nil, fmt.Errorf("decode learning path: %w", err)
	}

	if path.Description == "" {
		path.Description = fmt.Sprintf("Learn %s from %s level", titleCaser.String(topic), level)
	}
	if _, err := ParseLevel(string(path.Level)); err != nil {
		path.Level = level
	}
	if path.EstimatedHours == 0 {
		path.EstimatedHours = 20
	}
	if path.Prerequisites == nil {
		path.Prerequisites = []string{}
	}
	if path.KeyConcepts == nil {
		path.KeyConcepts = []string{}
	}

	return &path, nil
}

// CreateLesson generates one lesson for a concept.
func (g *Generator) CreateLesson(ctx context.Context, concept string, level Level, learningStyle, context_ string) (*Lesson, error) {
	payload, err := g.generate(ctx,
		lessonPrompt(concept, level, learningStyle, context_),
		"You are an expert educator. Create clear, engaging, and comprehensive lessons. Always respond with valid JSON only, no additional text.",
		4000, 0.7)
	if err != nil {
		return nil, fmt.Errorf("generate lesson for %q: %w", concept, err)
	}

	if err := validateArtifact("lesson", payload); err != nil {
		return nil, fmt.Errorf("generate lesson for %q: %w", concept, err)
	}

	var lesson Lesson
	if err := json.Unmarshal([]byte(payload), &lesson); err != nil {
		return nil, fmt.Errorf("decode lesson: %w", err)
	}

	if _, err := ParseLevel(string(lesson.Level)); err != nil {
		lesson.Level = level
	}
	if lesson.EstimatedMinutes == 0 {
		lesson.EstimatedMinutes = 30
	}

	return &lesson, nil
}

// CreateWorksheet generates a practice worksheet for a concept. Providers
// routinely under-deliver questions, so generation retries within a small
// budget and individually invalid questions are dropped rather than failing
// the artifact. Fewer than worksheetMinValid surviving questions after the
// budget is a failure.
func (g *Generator) CreateWorksheet(ctx context.Context, concept string, level Level, lessonContext string) (*Worksheet, error) {
	var lastErr error
	for attempt := 1; attempt <= worksheetMaxAttempts; attempt++ {
		ws, err := g.createWorksheetOnce(ctx, concept, level, lessonContext)
		if err == nil {
			return ws, nil
		}
		lastErr = err
		if attempt < worksheetMaxAttempts {
			slog.Info("retrying worksheet generation",
				"concept", concept,
				"attempt", attempt+1,
				"max_attempts", worksheetMaxAttempts,
				"error", err,
			)
		}
	}
	return nil, fmt.Errorf("generate worksheet for %q: %w", concept, lastErr)
}

func (g *Generator) createWorksheetOnce(ctx context.Context, concept string, level Level, lessonContext string) (*Worksheet, error) {
	payload, err := g.generate(ctx,
		worksheetPrompt(concept, level, lessonContext),
		"You are an expert educator creating practice worksheets. Generate diverse, appropriate questions. You MUST generate at least 7 questions. Always respond with valid JSON only, no additional text.",
		4000, 0.8)
	if err != nil {
		return nil, err
	}

	if err := validateArtifact("worksheet", payload); err != nil {
		return nil, err
	}

	var ws Worksheet
	if err := json.Unmarshal([]byte(payload), &ws); err != nil {
		return nil, fmt.Errorf("decode worksheet: %w", err)
	}

	valid := filterWorksheetQuestions(ws.Questions)
	if len(valid) < worksheetMinValid {
		return nil, fmt.Errorf("too few valid questions: %d, expected at least %d", len(valid), worksheetMinValid)
	}
	ws.Questions = valid

	if _, err := ParseLevel(string(ws.Level)); err != nil {
		ws.Level = level
	}
	if ws.AnswerKey == nil {
		ws.AnswerKey = map[string]any{}
	}
	fillAnswerKey(ws.AnswerKey, questionRefs(ws.Questions))

	return &ws, nil
}

// CreateQuiz generates an assessment covering the given concepts. quizType
// is "quiz" or "exam"; exams demand more questions, a higher passing score
// and a longer time limit.
func (g *Generator) CreateQuiz(ctx context.Context, concepts []string, level Level, quizType string) (*Quiz, error) {
	if quizType == "" {
		quizType = "quiz"
	}
	minQuestions := quizMinQuestions
	if quizType == "exam" {
		minQuestions = examMinQuestions
	}

	var lastErr error
	for attempt := 1; attempt <= quizMaxAttempts; attempt++ {
		lastAttempt := attempt == quizMaxAttempts
		quiz, err := g.createQuizOnce(ctx, concepts, level, quizType, minQuestions, lastAttempt)
		if err == nil {
			return quiz, nil
		}
		lastErr = err
		if !lastAttempt {
			slog.Info("retrying quiz generation",
				"level", level,
				"attempt", attempt+1,
				"max_attempts", quizMaxAttempts,
				"error", err,
			)
		}
	}
	return nil, fmt.Errorf("generate %s: %w", quizType, lastErr)
}

func (g *Generator) createQuizOnce(ctx context.Context, concepts []string, level Level, quizType string, minQuestions int, lastAttempt bool) (*Quiz, error) {
	payload, err := g.generate(ctx,
		quizPrompt(concepts, level, quizType),
		"You are an expert educator creating assessments. Generate fair, comprehensive quizzes that test understanding. You MUST generate at least 10 questions for quizzes and 12 for exams. Always respond with valid JSON only, no additional text.",
		5000, 0.7)
	if err != nil {
		return nil, err
	}

	if err := validateArtifact("quiz", payload); err != nil {
		return nil, err
	}

	var quiz Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}

	valid := filterQuizQuestions(quiz.Questions)
	if len(valid) < minQuestions {
		// On the final attempt a shorter quiz beats no quiz, down to a floor.
		if !lastAttempt || len(valid) < quizFloorQuestions {
			return nil, fmt.Errorf("too few valid questions: %d, expected at least %d", len(valid), minQuestions)
		}
		slog.Warn("accepting quiz below target question count",
			"valid_questions", len(valid),
			"expected", minQuestions,
		)
	}
	quiz.Questions = valid

	if _, err := ParseLevel(string(quiz.Level)); err != nil {
		quiz.Level = level
	}
	if quiz.Type == "" {
		quiz.Type = quizType
	}
	if quiz.AnswerKey == nil {
		quiz.AnswerKey = map[string]any{}
	}
	fillAnswerKey(quiz.AnswerKey, quizQuestionRefs(quiz.Questions))
	if quiz.PassingScore == 0 {
		if quizType == "exam" {
			quiz.PassingScore = 70
		} else {
			quiz.PassingScore = 60
		}
	}
	if quiz.TimeLimitMinutes == 0 {
		if quizType == "exam" {
			quiz.TimeLimitMinutes = 60
		} else {
			quiz.TimeLimitMinutes = 30
		}
	}

	return &quiz, nil
}

// CreateCapstone generates a capstone project for advanced and expert
// milestones.
func (g *Generator) CreateCapstone(ctx context.Context, topic string, level Level, concepts []string) (*Capstone, error) {
	payload, err := g.generate(ctx,
		capstonePrompt(topic, level, concepts),
		"You are an expert educator creating meaningful capstone projects. Generate portfolio-worthy projects with clear requirements. Always respond with valid JSON only, no additional text.",
		4000, 0.8)
	if err != nil {
		return nil, fmt.Errorf("generate capstone: %w", err)
	}

	if err := validateArtifact("capstone", payload); err != nil {
		return nil, fmt.Errorf("generate capstone: %w", err)
	}

	var capstone Capstone
	if err := json.Unmarshal([]byte(payload), &capstone); err != nil {
		return nil, fmt.Errorf("decode capstone: %w", err)
	}

	if _, err := ParseLevel(string(capstone.Level)); err != nil {
		capstone.Level = level
	}
	if capstone.Requirements == nil {
		capstone.Requirements = []string{}
	}
	if capstone.EvaluationRubric == nil {
		capstone.EvaluationRubric = []RubricCriteria{}
	}
	if capstone.EstimatedHours == 0 {
		capstone.EstimatedHours = 10
	}

	return &capstone, nil
}
