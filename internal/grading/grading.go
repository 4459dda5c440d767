// Package grading checks answers to exercises locally, without a network call.
package grading

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
)

// Feedback is the result of grading one answer.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// Grade checks answer against ex. mcq answers must match the recorded option
// key exactly; text answers are compared after Normalize. Unknown exercise
// types never grade as correct.
func Grade(ex curriculum.Exercise, answer string) Feedback {
	var correct bool
	switch ex.Type {
	case curriculum.ExerciseMCQ:
		correct = answer == ex.Answer
	case curriculum.ExerciseText:
		correct = Normalize(answer) == Normalize(ex.Answer)
	}

	return Feedback{
		Correct:     correct,
		Explanation: ex.Explanation,
	}
}

// Normalize prepares free text for comparison: NFC composition, surrounding
// whitespace trimmed, lower-cased.
func Normalize(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	// Casers keep state, so one per call.
	return cases.Lower(language.Und).String(s)
}
