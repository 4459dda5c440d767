// Package events records grading attempts.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event is one grading action.
type Event struct {
	SessionID    string
	TopicID      string
	LessonID     string
	ExerciseID   string
	ExerciseType string
	Answer       string
	Correct      bool
	CreatedAt    time.Time
}

// Logger records grading events.
type Logger interface {
	LogEvent(event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) LogEvent(Event) error {
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		events: []Event{},
	}
}

func (l *MemoryLogger) LogEvent(event Event) error {
	if err := event.validate(); err != nil {
		return err
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

const schema = `
CREATE TABLE IF NOT EXISTS grading_events (
	id            BIGSERIAL PRIMARY KEY,
	session_id    TEXT        NOT NULL,
	topic_id      TEXT        NOT NULL DEFAULT '',
	lesson_id     TEXT        NOT NULL DEFAULT '',
	exercise_id   TEXT        NOT NULL,
	exercise_type TEXT        NOT NULL DEFAULT '',
	answer        TEXT        NOT NULL DEFAULT '',
	correct       BOOLEAN     NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS grading_events_session_idx ON grading_events (session_id, created_at);
`

// PostgresLogger inserts events into the grading_events table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

// EnsureSchema creates the grading_events table if it does not exist.
func (l *PostgresLogger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create grading_events: %w", err)
	}
	return nil
}

func (l *PostgresLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if err := event.validate(); err != nil {
		return err
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err := l.pool.Exec(ctx,
		`INSERT INTO grading_events
		   (session_id, topic_id, lesson_id, exercise_id, exercise_type, answer, correct, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.SessionID,
		event.TopicID,
		event.LessonID,
		event.ExerciseID,
		event.ExerciseType,
		event.Answer,
		event.Correct,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert grading event: %w", err)
	}

	slog.Debug("grading event logged",
		"session_id", event.SessionID,
		"exercise_id", event.ExerciseID,
		"correct", event.Correct,
	)
	return nil
}

// Count returns how many events a session has recorded.
func (l *PostgresLogger) Count(ctx context.Context, sessionID string) (int, error) {
	if l == nil || l.pool == nil {
		return 0, fmt.Errorf("event logger pool is nil")
	}
	var n int
	if err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM grading_events WHERE session_id = $1`,
		sessionID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count grading events: %w", err)
	}
	return n, nil
}

func (e Event) validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if e.ExerciseID == "" {
		return fmt.Errorf("exercise_id is required")
	}
	return nil
}
