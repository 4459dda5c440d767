// Package report exports a lesson's exercises and grading results as a
// spreadsheet.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/grading"
)

// SheetName is the worksheet holding the results.
const SheetName = "Results"

// Header is the first row of the results sheet.
var Header = []string{"#", "Question", "Type", "Your answer", "Correct answer", "Result", "Explanation"}

// Result cell values.
const (
	ResultCorrect   = "Correct"
	ResultIncorrect = "Incorrect"
)

// WriteXLSX writes one row per exercise. Exercises that were never checked get
// an empty result cell.
func WriteXLSX(w io.Writer, lesson curriculum.Lesson, exercises []curriculum.Exercise, answers map[string]string, feedback map[string]grading.Feedback) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   lesson.Title,
		Subject: lesson.ID,
		Creator: "pai-playground",
	}); err != nil {
		return fmt.Errorf("setting document properties: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, ex := range exercises {
		result := ""
		if fb, ok := feedback[ex.ID]; ok {
			result = ResultIncorrect
			if fb.Correct {
				result = ResultCorrect
			}
		}
		row := []any{
			i + 1,
			ex.Question,
			string(ex.Type),
			describe(ex, answers[ex.ID]),
			describe(ex, ex.Answer),
			result,
			ex.Explanation,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "B", 48); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "D", "E", 24); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "G", "G", 48); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// describe renders an mcq key together with its option text.
func describe(ex curriculum.Exercise, answer string) string {
	if ex.Type != curriculum.ExerciseMCQ || answer == "" {
		return answer
	}
	if opt, ok := ex.Option(answer); ok {
		return answer + ": " + opt.Text
	}
	return answer
}
