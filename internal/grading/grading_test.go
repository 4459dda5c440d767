package grading

import (
	"testing"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
)

func TestGrade_MCQ(t *testing.T) {
	ex := curriculum.Exercise{
		ID:       "e1",
		Type:     curriculum.ExerciseMCQ,
		Question: "2+2?",
		Options: []curriculum.Option{
			{Key: "A", Text: "3"},
			{Key: "B", Text: "4"},
		},
		Answer:      "B",
		Explanation: "Arithmetic.",
	}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact key", "B", true},
		{"other key", "A", false},
		{"empty", "", false},
		{"lower-case key", "b", false},
		{"padded key", " B", false},
		{"option text instead of key", "4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(ex, tt.answer)
			if got.Correct != tt.want {
				t.Errorf("Grade(%q).Correct = %v, want %v", tt.answer, got.Correct, tt.want)
			}
			if got.Explanation != "Arithmetic." {
				t.Errorf("Explanation = %q, want Arithmetic.", got.Explanation)
			}
		})
	}
}

func TestGrade_Text(t *testing.T) {
	paris := curriculum.Exercise{
		ID:          "e2",
		Type:        curriculum.ExerciseText,
		Answer:      "Paris",
		Explanation: "Capital of France.",
	}

	tests := []struct {
		name   string
		ex     curriculum.Exercise
		answer string
		want   bool
	}{
		{"same case", paris, "Paris", true},
		{"padded lower", paris, " paris ", true},
		{"upper", paris, "PARIS", true},
		{"typo", paris, "Pariss", false},
		{"empty", paris, "", false},
		{"inner whitespace matters", paris, "Pa ris", false},
		{
			name:   "method name",
			ex:     curriculum.Exercise{Type: curriculum.ExerciseText, Answer: "Console.WriteLine"},
			answer: "  console.writeline ",
			want:   true,
		},
		{
			name:   "empty recorded answer accepts blank input",
			ex:     curriculum.Exercise{Type: curriculum.ExerciseText},
			answer: "   ",
			want:   true,
		},
		{
			name:   "decomposed accent",
			ex:     curriculum.Exercise{Type: curriculum.ExerciseText, Answer: "Caf\u00e9"},
			answer: "cafe\u0301",
			want:   true,
		},
		{
			name:   "tabs and newlines trimmed",
			ex:     curriculum.Exercise{Type: curriculum.ExerciseText, Answer: "int"},
			answer: "\tINT\n",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Grade(tt.ex, tt.answer)
			if got.Correct != tt.want {
				t.Errorf("Grade(%q).Correct = %v, want %v", tt.answer, got.Correct, tt.want)
			}
		})
	}
}

func TestGrade_UnknownType(t *testing.T) {
	ex := curriculum.Exercise{Type: "essay", Answer: "anything", Explanation: "Reviewed later."}

	got := Grade(ex, "anything")
	if got.Correct {
		t.Error("Grade() on unknown type should not be correct")
	}
	if got.Explanation != "Reviewed later." {
		t.Errorf("Explanation = %q", got.Explanation)
	}
}

func TestGrade_Idempotent(t *testing.T) {
	ex := curriculum.Exercise{Type: curriculum.ExerciseText, Answer: "Paris"}

	first := Grade(ex, " PARIS")
	for i := 0; i < 3; i++ {
		if got := Grade(ex, " PARIS"); got != first {
			t.Fatalf("Grade() call %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Hello World  ", "hello world"},
		{"ÉCOLE", "école"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
