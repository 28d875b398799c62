package content

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Question validation. Providers produce structurally valid JSON that is
// still semantically broken per question (an option index out of range, a
// matching answer shorter than its option list). Broken questions are
// dropped with a log line; the caller decides whether enough survive.

type questionRef struct {
	id     string
	answer any
}

func validateQuestion(id, qtype, question string, options []string, answer any, points int) error {
	if id == "" {
		return fmt.Errorf("missing question id")
	}
	if qtype == "" {
		return fmt.Errorf("missing question type")
	}
	if question == "" {
		return fmt.Errorf("missing question text")
	}
	if answer == nil {
		return fmt.Errorf("missing correct_answer")
	}
	if points <= 0 {
		return fmt.Errorf("missing or non-positive points")
	}

	switch qtype {
	case "multiple_choice":
		if len(options) < 2 {
			return fmt.Errorf("multiple_choice needs at least 2 options, got %d", len(options))
		}
		if len(options) != 4 {
			slog.Debug("multiple_choice question has unusual option count", "question_id", id, "options", len(options))
		}
		idx, ok := answerIndex(answer)
		if !ok {
			return fmt.Errorf("multiple_choice correct_answer must be an option index, got %T", answer)
		}
		if idx < 0 || idx >= len(options) {
			return fmt.Errorf("multiple_choice correct_answer index %d out of range [0, %d)", idx, len(options))
		}
	case "matching":
		if len(options) == 0 {
			return fmt.Errorf("matching question has no options")
		}
		matches, ok := answer.([]any)
		if !ok {
			return fmt.Errorf("matching correct_answer must be an array, got %T", answer)
		}
		if len(matches) != len(options) {
			return fmt.Errorf("matching has %d options but %d answers", len(options), len(matches))
		}
	case "true_false":
		s, ok := answer.(string)
		if !ok {
			return fmt.Errorf("true_false correct_answer must be a string, got %T", answer)
		}
		if v := strings.ToLower(strings.TrimSpace(s)); v != "true" && v != "false" {
			return fmt.Errorf("true_false correct_answer must be \"true\" or \"false\", got %q", s)
		}
	case "fill_in_blank":
		if !strings.Contains(question, "___") {
			slog.Debug("fill_in_blank question missing blank marker", "question_id", id)
		}
	}
	return nil
}

// answerIndex extracts an integer option index from a decoded JSON value.
// json.Unmarshal into any yields float64 for numbers.
func answerIndex(answer any) (int, bool) {
	switch v := answer.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func filterWorksheetQuestions(questions []WorksheetQuestion) []WorksheetQuestion {
	valid := make([]WorksheetQuestion, 0, len(questions))
	for _, q := range questions {
		if err := validateQuestion(q.ID, q.Type, q.Question, q.Options, q.CorrectAnswer, q.Points); err != nil {
			slog.Warn("dropping invalid worksheet question", "question_id", q.ID, "type", q.Type, "error", err)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

func filterQuizQuestions(questions []QuizQuestion) []QuizQuestion {
	valid := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if err := validateQuestion(q.ID, q.Type, q.Question, q.Options, q.CorrectAnswer, q.Points); err != nil {
			slog.Warn("dropping invalid quiz question", "question_id", q.ID, "type", q.Type, "error", err)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

func questionRefs(questions []WorksheetQuestion) []questionRef {
	refs := make([]questionRef, len(questions))
	for i, q := range questions {
		refs[i] = questionRef{id: q.ID, answer: q.CorrectAnswer}
	}
	return refs
}

func quizQuestionRefs(questions []QuizQuestion) []questionRef {
	refs := make([]questionRef, len(questions))
	for i, q := range questions {
		refs[i] = questionRef{id: q.ID, answer: q.CorrectAnswer}
	}
	return refs
}

// fillAnswerKey backfills answer key entries from per-question answers so
// the key always covers every surviving question. Entries for unknown
// question IDs are kept but flagged; they usually point at a question that
// was dropped during validation.
func fillAnswerKey(key map[string]any, refs []questionRef) {
	known := make(map[string]bool, len(refs))
	for _, ref := range refs {
		known[ref.id] = true
		if _, ok := key[ref.id]; !ok {
			key[ref.id] = ref.answer
		}
	}

	var extras []string
	for id := range key {
		if !known[id] {
			extras = append(extras, id)
		}
	}
	if len(extras) > 0 {
		slog.Warn("answer key has entries without a matching question", "question_ids", extras)
	}
}
