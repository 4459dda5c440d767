package console

import (
	"context"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-playground/internal/events"
	"github.com/p-n-ai/pai-playground/internal/progress"
	"github.com/p-n-ai/pai-playground/internal/viewer"
)

const recordTimeout = 3 * time.Second

// Recorder turns grading actions into attempt events and progress counts.
// Failures are logged and never change the feedback shown.
type Recorder struct {
	sessionID string
	events    events.Logger
	tracker   progress.Tracker
}

// NewRecorder creates a recorder for one session. Nil sinks fall back to a
// no-op event logger and an in-memory tracker.
func NewRecorder(sessionID string, logger events.Logger, tracker progress.Tracker) *Recorder {
	if logger == nil {
		logger = events.NopLogger{}
	}
	if tracker == nil {
		tracker = progress.NewInMemoryTracker()
	}
	return &Recorder{sessionID: sessionID, events: logger, tracker: tracker}
}

// SessionID returns the id attached to every recorded attempt.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Tracker returns the progress tracker attempts are counted in.
func (r *Recorder) Tracker() progress.Tracker {
	return r.tracker
}

// OnGrade is installed as the viewer's grade hook.
func (r *Recorder) OnGrade(a viewer.Attempt) {
	if err := r.events.LogEvent(events.Event{
		SessionID:    r.sessionID,
		TopicID:      a.TopicID,
		LessonID:     a.LessonID,
		ExerciseID:   a.Exercise.ID,
		ExerciseType: string(a.Exercise.Type),
		Answer:       a.Answer,
		Correct:      a.Feedback.Correct,
		CreatedAt:    time.Now(),
	}); err != nil {
		slog.Warn("failed to log grading event", "exercise_id", a.Exercise.ID, "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.tracker.Record(ctx, r.sessionID, a.Exercise.ID, a.Feedback.Correct); err != nil {
		slog.Warn("failed to record progress", "exercise_id", a.Exercise.ID, "error", err)
	}
}
