// Package export renders generated content into downloadable documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pathforge/pathforge/internal/content"
)

// ContentTypeXLSX is the MIME type for the exported workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	questionsSheet = "Questions"
	answersSheet   = "Answer Key"
)

var titleCaser = cases.Title(language.English)

// WorksheetXLSX writes a worksheet as an Excel workbook: a Questions sheet
// with one row per question and an Answer Key sheet. Pure function over
// the worksheet; the caller owns the writer.
func WorksheetXLSX(ws *content.Worksheet, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", questionsSheet)
	if _, err := f.NewSheet(answersSheet); err != nil {
		return fmt.Errorf("create answer sheet: %w", err)
	}

	header := []any{"#", "ID", "Type", "Question", "Options", "Points"}
	if err := setRow(f, questionsSheet, 1, header); err != nil {
		return err
	}
	for i, q := range ws.Questions {
		row := []any{
			i + 1,
			q.ID,
			questionTypeLabel(q.Type),
			q.Question,
			strings.Join(q.Options, "; "),
			q.Points,
		}
		if err := setRow(f, questionsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, answersSheet, 1, []any{"ID", "Answer"}); err != nil {
		return err
	}
	// Answers follow question order so the key reads top to bottom.
	row := 2
	for _, q := range ws.Questions {
		answer, ok := ws.AnswerKey[q.ID]
		if !ok {
			answer = q.CorrectAnswer
		}
		if err := setRow(f, answersSheet, row, []any{q.ID, formatAnswer(answer)}); err != nil {
			return err
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d on %s: %w", row, sheet, err)
	}
	return nil
}

// questionTypeLabel turns a snake_case question type into a display label,
// e.g. "fill_in_blank" into "Fill In Blank".
func questionTypeLabel(qtype string) string {
	return titleCaser.String(strings.ReplaceAll(qtype, "_", " "))
}

func formatAnswer(answer any) string {
	switch v := answer.(type) {
	case string:
		return v
	case float64:
		if v == float64(int(v)) {
			return fmt.Sprintf("%d", int(v))
		}
		return fmt.Sprintf("%v", v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatAnswer(item)
		}
		return strings.Join(parts, "; ")
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
