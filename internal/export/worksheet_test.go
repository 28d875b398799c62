package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/pathforge/pathforge/internal/content"
)

func sampleWorksheet() *content.Worksheet {
	return &content.Worksheet{
		ID:    "w1",
		Title: "Slices Practice",
		Level: content.LevelBeginner,
		Questions: []content.WorksheetQuestion{
			{ID: "q1", Type: "fill_in_blank", Question: "A slice header holds a pointer, a length and a ___.", CorrectAnswer: "capacity", Points: 5},
			{ID: "q2", Type: "multiple_choice", Question: "What does append return?", Options: []string{"nothing", "a new slice", "an error", "a pointer"}, CorrectAnswer: float64(1), Points: 10},
			{ID: "q3", Type: "matching", Question: "Match the builtin to its effect.", Options: []string{"len", "cap"}, CorrectAnswer: []any{"length", "capacity"}, Points: 10},
		},
		AnswerKey: map[string]any{
			"q1": "capacity",
			"q2": float64(1),
			"q3": []any{"length", "capacity"},
		},
	}
}

func TestWorksheetXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WorksheetXLSX(sampleWorksheet(), &buf); err != nil {
		t.Fatalf("WorksheetXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	questions, err := f.GetRows("Questions")
	if err != nil {
		t.Fatalf("GetRows(Questions) error = %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("question rows = %d, want 4 (header + 3)", len(questions))
	}
	if questions[1][2] != "Fill In Blank" {
		t.Errorf("type label = %q, want %q", questions[1][2], "Fill In Blank")
	}
	if questions[2][4] != "nothing; a new slice; an error; a pointer" {
		t.Errorf("options cell = %q", questions[2][4])
	}

	answers, err := f.GetRows("Answer Key")
	if err != nil {
		t.Fatalf("GetRows(Answer Key) error = %v", err)
	}
	if len(answers) != 4 {
		t.Fatalf("answer rows = %d, want 4", len(answers))
	}
	if answers[1][1] != "capacity" {
		t.Errorf("q1 answer = %q, want %q", answers[1][1], "capacity")
	}
	if answers[2][1] != "1" {
		t.Errorf("q2 answer = %q, want %q (option index)", answers[2][1], "1")
	}
	if answers[3][1] != "length; capacity" {
		t.Errorf("q3 answer = %q, want joined matches", answers[3][1])
	}
}

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "yes", "yes"},
		{"index", float64(2), "2"},
		{"fraction", 2.5, "2.5"},
		{"list", []any{"a", float64(1)}, "a; 1"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAnswer(tt.in); got != tt.want {
				t.Errorf("formatAnswer(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
