// Package view renders the playground screen as plain text: the header, the
// topic sidebar and the lesson viewer.
package view

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-playground/internal/app"
	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/grading"
	"github.com/p-n-ai/pai-playground/internal/viewer"
)

// Screen text.
const (
	Title         = "C# Learning Playground"
	Subtitle      = "Powered by your personal AI tutor"
	SeedLabel     = "Seed sample content"
	SeedingLabel  = "Seeding..."
	SidebarTitle  = "C# Curriculum"
	Loading       = "Loading..."
	NoTopic       = "Select a topic to begin learning."
	NoLessons     = "No lessons yet."
	NoExercises   = "No exercises for this lesson."
	CheckLabel    = "Check answer"
	CorrectText   = "Correct!"
	IncorrectText = "Not quite."
)

const rule = "────────────────────────────────────────"

// Header renders the title block, the content source and the seed action.
func Header(source string, seeding bool) string {
	var b strings.Builder
	b.WriteString(Title + "\n")
	b.WriteString(Subtitle + "\n")
	fmt.Fprintf(&b, "API: %s\n", source)
	if seeding {
		fmt.Fprintf(&b, "[%s]\n", SeedingLabel)
	} else {
		fmt.Fprintf(&b, "[%s] /seed\n", SeedLabel)
	}
	return b.String()
}

// Sidebar renders the numbered topic list and marks the current topic.
func Sidebar(topics []curriculum.Topic, current *curriculum.Topic, phase viewer.Phase, err error) string {
	var b strings.Builder
	b.WriteString(SidebarTitle + "\n")
	if phase == viewer.PhaseFailed && err != nil {
		fmt.Fprintf(&b, "! Could not load topics: %v\n", err)
	}
	for i, t := range topics {
		marker := " "
		if current != nil && current.ID == t.ID {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %d. %s\n", marker, i+1, t.Title)
		if t.Description != "" {
			fmt.Fprintf(&b, "     %s\n", t.Description)
		}
	}
	return b.String()
}

// LessonViewer renders the current topic, its lessons, the active lesson and
// its exercises with answers and feedback.
func LessonViewer(s viewer.State, loading bool) string {
	if loading {
		return Loading + "\n"
	}
	if s.Topic == nil {
		return NoTopic + "\n"
	}

	var b strings.Builder
	b.WriteString(s.Topic.Title + "\n")
	if s.Topic.Description != "" {
		b.WriteString(s.Topic.Description + "\n")
	}

	b.WriteString("\nLessons\n")
	switch s.LessonsPhase {
	case viewer.PhaseLoading:
		b.WriteString("  " + Loading + "\n")
	case viewer.PhaseFailed:
		fmt.Fprintf(&b, "  ! Could not load lessons: %v\n", s.LessonsErr)
	default:
		for i, l := range s.Lessons {
			marker := " "
			if s.ActiveLesson != nil && s.ActiveLesson.ID == l.ID {
				marker = ">"
			}
			fmt.Fprintf(&b, "%s %d. %s (level: %s)\n", marker, i+1, l.Title, l.Level)
		}
	}

	b.WriteString("\n")
	if s.ActiveLesson == nil {
		if s.LessonsPhase != viewer.PhaseLoading && s.LessonsPhase != viewer.PhaseFailed {
			b.WriteString(NoLessons + "\n")
		}
		return b.String()
	}

	b.WriteString(rule + "\n")
	b.WriteString(s.ActiveLesson.Title + "\n")
	if s.ActiveLesson.Content != "" {
		b.WriteString("\n" + s.ActiveLesson.Content + "\n")
	}
	b.WriteString(rule + "\n")

	b.WriteString("\nExercises\n")
	switch s.ExercisesPhase {
	case viewer.PhaseLoading:
		b.WriteString("  " + Loading + "\n")
		return b.String()
	case viewer.PhaseFailed:
		fmt.Fprintf(&b, "  ! Could not load exercises: %v\n", s.ExercisesErr)
		return b.String()
	}
	if len(s.Exercises) == 0 {
		b.WriteString(NoExercises + "\n")
		return b.String()
	}

	for i, ex := range s.Exercises {
		b.WriteString("\n")
		writeExercise(&b, i+1, ex, s.Answers[ex.ID], s.Feedback)
	}
	return b.String()
}

func writeExercise(b *strings.Builder, n int, ex curriculum.Exercise, answer string, feedback map[string]grading.Feedback) {
	fmt.Fprintf(b, "%d. %s\n", n, ex.Question)
	switch ex.Type {
	case curriculum.ExerciseMCQ:
		for _, op := range ex.Options {
			mark := " "
			if answer == op.Key {
				mark = "x"
			}
			fmt.Fprintf(b, "   (%s) %s. %s\n", mark, op.Key, op.Text)
		}
		fmt.Fprintf(b, "   [%s] /choose %d <key>, /check %d\n", CheckLabel, n, n)
	default:
		fmt.Fprintf(b, "   Answer: %s\n", answer)
		fmt.Fprintf(b, "   [%s] /answer %d <text>, /check %d\n", CheckLabel, n, n)
	}

	fb, ok := feedback[ex.ID]
	if !ok {
		return
	}
	fmt.Fprintf(b, "   %s\n", Feedback(fb))
}

// Feedback renders one grading result.
func Feedback(fb grading.Feedback) string {
	verdict := IncorrectText
	if fb.Correct {
		verdict = CorrectText
	}
	if fb.Explanation == "" {
		return verdict
	}
	return verdict + " " + fb.Explanation
}

// Screen renders the whole playground.
func Screen(source string, s app.State) string {
	var b strings.Builder
	b.WriteString(Header(source, s.Seeding))
	b.WriteString("\n")
	b.WriteString(Sidebar(s.Topics, s.Current, s.TopicsPhase, s.TopicsErr))
	b.WriteString("\n")
	b.WriteString(LessonViewer(s.Viewer, s.Loading))
	return b.String()
}
