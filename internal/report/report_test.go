package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/grading"
	"github.com/p-n-ai/pai-playground/internal/report"
)

var exercises = []curriculum.Exercise{
	{
		ID: "e1", Type: curriculum.ExerciseMCQ, Question: "2+2?",
		Options:     []curriculum.Option{{Key: "A", Text: "3"}, {Key: "B", Text: "4"}},
		Answer:      "B",
		Explanation: "Arithmetic.",
	},
	{
		ID: "e2", Type: curriculum.ExerciseText, Question: "Print a line?",
		Answer: "Console.WriteLine", Explanation: "Writes a line.",
	},
	{
		ID: "e3", Type: curriculum.ExerciseText, Question: "Integer keyword?",
		Answer: "int",
	},
}

func readRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	answers := map[string]string{"e1": "A", "e2": "console.writeline"}
	feedback := map[string]grading.Feedback{
		"e1": {Correct: false, Explanation: "Arithmetic."},
		"e2": {Correct: true, Explanation: "Writes a line."},
	}

	err := report.WriteXLSX(&buf, curriculum.Lesson{ID: "l1", Title: "Intro"}, exercises, answers, feedback)
	require.NoError(t, err)

	rows := readRows(t, &buf)
	require.Len(t, rows, 4)
	assert.Equal(t, report.Header, rows[0])
	assert.Equal(t, []string{"1", "2+2?", "mcq", "A: 3", "B: 4", "Incorrect", "Arithmetic."}, rows[1])
	assert.Equal(t, []string{"2", "Print a line?", "text", "console.writeline", "Console.WriteLine", "Correct", "Writes a line."}, rows[2])
	// Ungraded and unanswered: trailing empty cells are dropped by GetRows.
	assert.Equal(t, []string{"3", "Integer keyword?", "text", "", "int"}, rows[3])
}

func TestWriteXLSX_NoExercises(t *testing.T) {
	var buf bytes.Buffer

	err := report.WriteXLSX(&buf, curriculum.Lesson{ID: "l2"}, nil, nil, nil)
	require.NoError(t, err)

	rows := readRows(t, &buf)
	require.Len(t, rows, 1)
	assert.Equal(t, report.Header, rows[0])
}

func TestWriteXLSX_DocTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, curriculum.Lesson{ID: "l1", Title: "Intro"}, exercises, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	props, err := f.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Intro", props.Title)
	assert.Equal(t, []string{report.SheetName}, f.GetSheetList())
}
