package content

import "testing"

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		qtype   string
		text    string
		options []string
		answer  any
		points  int
		wantErr bool
	}{
		{"short answer ok", "q1", "short_answer", "Explain.", nil, "because", 5, false},
		{"missing id", "", "short_answer", "Explain.", nil, "x", 5, true},
		{"missing type", "q1", "", "Explain.", nil, "x", 5, true},
		{"missing text", "q1", "short_answer", "", nil, "x", 5, true},
		{"missing answer", "q1", "short_answer", "Explain.", nil, nil, 5, true},
		{"zero points", "q1", "short_answer", "Explain.", nil, "x", 0, true},
		{"negative points", "q1", "short_answer", "Explain.", nil, "x", -3, true},
		{"mc ok", "q1", "multiple_choice", "Pick.", []string{"a", "b", "c", "d"}, float64(2), 5, false},
		{"mc two options ok", "q1", "multiple_choice", "Pick.", []string{"a", "b"}, float64(1), 5, false},
		{"mc one option", "q1", "multiple_choice", "Pick.", []string{"a"}, float64(0), 5, true},
		{"mc index out of range", "q1", "multiple_choice", "Pick.", []string{"a", "b"}, float64(2), 5, true},
		{"mc negative index", "q1", "multiple_choice", "Pick.", []string{"a", "b"}, float64(-1), 5, true},
		{"mc fractional index", "q1", "multiple_choice", "Pick.", []string{"a", "b"}, 0.5, 5, true},
		{"mc string answer", "q1", "multiple_choice", "Pick.", []string{"a", "b"}, "a", 5, true},
		{"matching ok", "q1", "matching", "Match.", []string{"a", "b"}, []any{"x", "y"}, 5, false},
		{"matching length mismatch", "q1", "matching", "Match.", []string{"a", "b", "c"}, []any{"x", "y"}, 5, true},
		{"matching no options", "q1", "matching", "Match.", nil, []any{"x"}, 5, true},
		{"matching scalar answer", "q1", "matching", "Match.", []string{"a"}, "x", 5, true},
		{"tf true", "q1", "true_false", "Eval.", nil, "true", 5, false},
		{"tf mixed case", "q1", "true_false", "Eval.", nil, "True", 5, false},
		{"tf invalid", "q1", "true_false", "Eval.", nil, "yes", 5, true},
		{"tf numeric", "q1", "true_false", "Eval.", nil, float64(1), 5, true},
		{"fill in blank ok", "q1", "fill_in_blank", "The ___ keyword.", nil, "func", 5, false},
		{"fill in blank no marker", "q1", "fill_in_blank", "No marker here.", nil, "func", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestion(tt.id, tt.qtype, tt.text, tt.options, tt.answer, tt.points)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFillAnswerKey(t *testing.T) {
	key := map[string]any{"q1": "existing"}
	fillAnswerKey(key, []questionRef{
		{id: "q1", answer: "new"},
		{id: "q2", answer: float64(2)},
	})

	if key["q1"] != "existing" {
		t.Errorf("q1 = %v, existing entries must not be overwritten", key["q1"])
	}
	if key["q2"] != float64(2) {
		t.Errorf("q2 = %v, want backfilled answer", key["q2"])
	}
}

func TestFillAnswerKey_KeepsExtraEntries(t *testing.T) {
	key := map[string]any{"q1": "a", "q9": "orphaned"}
	fillAnswerKey(key, []questionRef{{id: "q1", answer: "a"}})

	if len(key) != 2 {
		t.Fatalf("len(key) = %d, want 2", len(key))
	}
	if key["q9"] != "orphaned" {
		t.Errorf("q9 = %v, extra entries must survive", key["q9"])
	}
}

func TestFilterWorksheetQuestions(t *testing.T) {
	questions := []WorksheetQuestion{
		{ID: "q1", Type: "short_answer", Question: "a", CorrectAnswer: "x", Points: 5},
		{ID: "", Type: "short_answer", Question: "b", CorrectAnswer: "y", Points: 5},
		{ID: "q3", Type: "true_false", Question: "c", CorrectAnswer: "false", Points: 5},
	}

	valid := filterWorksheetQuestions(questions)
	if len(valid) != 2 {
		t.Fatalf("valid = %d, want 2", len(valid))
	}
	if valid[0].ID != "q1" || valid[1].ID != "q3" {
		t.Errorf("surviving order = %s, %s; want q1, q3", valid[0].ID, valid[1].ID)
	}
}

func TestFilterWorksheetQuestions_TypeAndPointsRequired(t *testing.T) {
	questions := []WorksheetQuestion{
		{ID: "q1", Type: "", Question: "What is 2+2?", CorrectAnswer: "4", Points: 5},
		{ID: "q2", Type: "short_answer", Question: "What is 2+2?", CorrectAnswer: "4", Points: 0},
		{ID: "q3", Type: "short_answer", Question: "What is 2+2?", CorrectAnswer: "4", Points: 5},
	}

	valid := filterWorksheetQuestions(questions)
	if len(valid) != 1 {
		t.Fatalf("valid = %d, want 1", len(valid))
	}
	if valid[0].ID != "q3" {
		t.Errorf("survivor = %s, want q3", valid[0].ID)
	}
}

func TestFilterQuizQuestions_TypeAndPointsRequired(t *testing.T) {
	questions := []QuizQuestion{
		{ID: "q1", Type: "", Question: "Eval.", CorrectAnswer: "true", Points: 5},
		{ID: "q2", Type: "true_false", Question: "Eval.", CorrectAnswer: "true", Points: 0},
		{ID: "q3", Type: "true_false", Question: "Eval.", CorrectAnswer: "true", Points: 5},
	}

	valid := filterQuizQuestions(questions)
	if len(valid) != 1 {
		t.Fatalf("valid = %d, want 1", len(valid))
	}
	if valid[0].ID != "q3" {
		t.Errorf("survivor = %s, want q3", valid[0].ID)
	}
}
