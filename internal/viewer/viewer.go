// Package viewer holds the lesson viewer state: the lessons of the current
// topic, the active lesson, its exercises, and per-exercise answers and
// feedback.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/grading"
)

var (
	ErrNoTopic         = errors.New("no topic selected")
	ErrUnknownLesson   = errors.New("lesson not in current topic")
	ErrUnknownExercise = errors.New("exercise not in current lesson")

	// ErrSuperseded is returned when a newer selection replaced the one a
	// fetch was started for. The fetched data was discarded.
	ErrSuperseded = errors.New("selection superseded")
)

// Source fetches lessons and exercises.
type Source interface {
	Lessons(ctx context.Context, topicID string) ([]curriculum.Lesson, error)
	Exercises(ctx context.Context, lessonID string) ([]curriculum.Exercise, error)
}

// Attempt describes one grading action, passed to the grade hook.
type Attempt struct {
	TopicID  string
	LessonID string
	Exercise curriculum.Exercise
	Answer   string
	Feedback grading.Feedback
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithGradeHook registers fn to run after every grading action. It runs
// outside the viewer lock and must not block for long.
func WithGradeHook(fn func(Attempt)) Option {
	return func(v *Viewer) {
		v.onGrade = fn
	}
}

// State is a point-in-time copy of the viewer, safe to render.
type State struct {
	Topic          *curriculum.Topic
	Lessons        []curriculum.Lesson
	LessonsPhase   Phase
	LessonsErr     error
	ActiveLesson   *curriculum.Lesson
	Exercises      []curriculum.Exercise
	ExercisesPhase Phase
	ExercisesErr   error
	Answers        map[string]string
	Feedback       map[string]grading.Feedback
}

// Viewer is the lesson viewer state container. All mutation goes through its
// methods; fetches run without holding the lock and their results are applied
// only if no newer selection happened meanwhile.
type Viewer struct {
	source  Source
	onGrade func(Attempt)

	mu             sync.Mutex
	topic          *curriculum.Topic
	topicGen       uint64
	lessons        []curriculum.Lesson
	lessonsPhase   Phase
	lessonsErr     error
	active         *curriculum.Lesson
	lessonGen      uint64
	exercises      []curriculum.Exercise
	exercisesPhase Phase
	exercisesErr   error
	answers        map[string]string
	feedback       map[string]grading.Feedback
}

// New creates an empty viewer reading from source.
func New(source Source, opts ...Option) *Viewer {
	v := &Viewer{
		source:   source,
		answers:  make(map[string]string),
		feedback: make(map[string]grading.Feedback),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SelectTopic makes topic current, fetches its lessons and activates the first
// one, which in turn fetches its exercises. A nil topic clears the viewer.
// Lessons, exercises, answers and feedback are reset before any fetch starts.
func (v *Viewer) SelectTopic(ctx context.Context, topic *curriculum.Topic) error {
	v.mu.Lock()
	v.topicGen++
	v.lessonGen++
	gen := v.topicGen
	v.topic = cloneTopic(topic)
	v.lessons = nil
	v.lessonsErr = nil
	v.active = nil
	v.resetExercisesLocked()
	v.exercisesPhase = PhaseIdle
	if topic == nil {
		v.lessonsPhase = PhaseIdle
		v.mu.Unlock()
		return nil
	}
	v.lessonsPhase = PhaseLoading
	topicID := topic.ID
	v.mu.Unlock()

	lessons, err := v.source.Lessons(ctx, topicID)

	v.mu.Lock()
	if gen != v.topicGen {
		v.mu.Unlock()
		slog.Debug("discarding stale lessons", "topic_id", topicID)
		return ErrSuperseded
	}
	if err != nil {
		v.lessonsPhase = PhaseFailed
		v.lessonsErr = err
		v.mu.Unlock()
		return fmt.Errorf("loading lessons for topic %s: %w", topicID, err)
	}
	v.lessons = lessons
	v.lessonsPhase = phaseFor(len(lessons))
	var first *curriculum.Lesson
	if len(lessons) > 0 {
		l := lessons[0]
		first = &l
	}
	v.mu.Unlock()

	if first == nil {
		return nil
	}
	return v.activate(ctx, gen, *first)
}

// SelectLesson activates a lesson of the current topic and fetches its
// exercises. Exercises, answers and feedback are cleared before the fetch.
func (v *Viewer) SelectLesson(ctx context.Context, lessonID string) error {
	v.mu.Lock()
	if v.topic == nil {
		v.mu.Unlock()
		return ErrNoTopic
	}
	gen := v.topicGen
	var lesson *curriculum.Lesson
	for i := range v.lessons {
		if v.lessons[i].ID == lessonID {
			l := v.lessons[i]
			lesson = &l
			break
		}
	}
	v.mu.Unlock()

	if lesson == nil {
		return fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}
	return v.activate(ctx, gen, *lesson)
}

func (v *Viewer) activate(ctx context.Context, topicGen uint64, lesson curriculum.Lesson) error {
	v.mu.Lock()
	if topicGen != v.topicGen {
		v.mu.Unlock()
		return ErrSuperseded
	}
	v.lessonGen++
	gen := v.lessonGen
	v.active = &lesson
	v.resetExercisesLocked()
	v.exercisesPhase = PhaseLoading
	v.mu.Unlock()

	exercises, err := v.source.Exercises(ctx, lesson.ID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.lessonGen {
		slog.Debug("discarding stale exercises", "lesson_id", lesson.ID)
		return ErrSuperseded
	}
	if err != nil {
		v.exercisesPhase = PhaseFailed
		v.exercisesErr = err
		return fmt.Errorf("loading exercises for lesson %s: %w", lesson.ID, err)
	}
	v.exercises = exercises
	v.exercisesPhase = phaseFor(len(exercises))
	// New exercise set, so answers and feedback start over.
	v.answers = make(map[string]string)
	v.feedback = make(map[string]grading.Feedback)
	return nil
}

// SetAnswer stores the user's current input for an exercise: an option key for
// mcq, free text for text exercises. Existing feedback is kept until the next
// check.
func (v *Viewer) SetAnswer(exerciseID, answer string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.exerciseLocked(exerciseID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
	}
	v.answers[exerciseID] = answer
	return nil
}

// Check grades the stored answer of one exercise and records the feedback.
// Other exercises' feedback is untouched. Checking without a stored answer
// grades the empty string.
func (v *Viewer) Check(exerciseID string) (grading.Feedback, error) {
	v.mu.Lock()
	ex, ok := v.exerciseLocked(exerciseID)
	if !ok {
		v.mu.Unlock()
		return grading.Feedback{}, fmt.Errorf("%w: %s", ErrUnknownExercise, exerciseID)
	}
	answer := v.answers[exerciseID]
	fb := grading.Grade(ex, answer)
	v.feedback[exerciseID] = fb

	attempt := Attempt{
		Exercise: ex,
		Answer:   answer,
		Feedback: fb,
	}
	if v.topic != nil {
		attempt.TopicID = v.topic.ID
	}
	if v.active != nil {
		attempt.LessonID = v.active.ID
	}
	v.mu.Unlock()

	if v.onGrade != nil {
		v.onGrade(attempt)
	}
	return fb, nil
}

// State returns a copy of the current state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := State{
		Topic:          cloneTopic(v.topic),
		Lessons:        append([]curriculum.Lesson(nil), v.lessons...),
		LessonsPhase:   v.lessonsPhase,
		LessonsErr:     v.lessonsErr,
		Exercises:      append([]curriculum.Exercise(nil), v.exercises...),
		ExercisesPhase: v.exercisesPhase,
		ExercisesErr:   v.exercisesErr,
		Answers:        maps.Clone(v.answers),
		Feedback:       maps.Clone(v.feedback),
	}
	if v.active != nil {
		l := *v.active
		s.ActiveLesson = &l
	}
	return s
}

func (v *Viewer) resetExercisesLocked() {
	v.exercises = nil
	v.exercisesErr = nil
	v.answers = make(map[string]string)
	v.feedback = make(map[string]grading.Feedback)
}

func (v *Viewer) exerciseLocked(id string) (curriculum.Exercise, bool) {
	for _, ex := range v.exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return curriculum.Exercise{}, false
}

func cloneTopic(t *curriculum.Topic) *curriculum.Topic {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
