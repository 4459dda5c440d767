// Package progress keeps a per-session tally of graded attempts.
package progress

import (
	"context"
	"fmt"
	"sync"
)

// Summary counts attempts and how many of them were correct.
type Summary struct {
	Attempts int64
	Correct  int64
}

// Tracker records grading outcomes and reports tallies.
type Tracker interface {
	// Record adds one attempt for an exercise.
	Record(ctx context.Context, sessionID, exerciseID string, correct bool) error
	// Summary returns the session-wide tally.
	Summary(ctx context.Context, sessionID string) (Summary, error)
	// Exercise returns the tally for one exercise.
	Exercise(ctx context.Context, sessionID, exerciseID string) (Summary, error)
}

// InMemoryTracker keeps tallies in process memory. Used when no cache is
// configured.
type InMemoryTracker struct {
	mu        sync.RWMutex
	sessions  map[string]Summary
	exercises map[string]Summary
}

// NewInMemoryTracker creates an empty in-memory tracker.
func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{
		sessions:  make(map[string]Summary),
		exercises: make(map[string]Summary),
	}
}

func (t *InMemoryTracker) Record(_ context.Context, sessionID, exerciseID string, correct bool) error {
	if sessionID == "" || exerciseID == "" {
		return fmt.Errorf("session and exercise ids are required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessions[sessionID] = t.sessions[sessionID].add(correct)
	key := exerciseKey(sessionID, exerciseID)
	t.exercises[key] = t.exercises[key].add(correct)
	return nil
}

func (t *InMemoryTracker) Summary(_ context.Context, sessionID string) (Summary, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessions[sessionID], nil
}

func (t *InMemoryTracker) Exercise(_ context.Context, sessionID, exerciseID string) (Summary, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.exercises[exerciseKey(sessionID, exerciseID)], nil
}

func (s Summary) add(correct bool) Summary {
	s.Attempts++
	if correct {
		s.Correct++
	}
	return s
}

func exerciseKey(sessionID, exerciseID string) string {
	return sessionID + ":" + exerciseID
}
