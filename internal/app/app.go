// Package app is the root state container: the topic list, the current topic,
// and the loading and seeding flags. It drives the lesson viewer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/viewer"
)

var (
	// ErrSeedInProgress is returned by Seed while an earlier seed is running.
	ErrSeedInProgress = errors.New("seeding already in progress")
	ErrUnknownTopic   = errors.New("unknown topic")
)

// Source is everything the app reads from: the API client or the offline
// catalogue.
type Source interface {
	viewer.Source
	Topics(ctx context.Context) ([]curriculum.Topic, error)
	Seed(ctx context.Context) error
}

// Option configures an App.
type Option func(*App)

// WithViewerOptions passes options to the embedded lesson viewer.
func WithViewerOptions(opts ...viewer.Option) Option {
	return func(a *App) {
		a.viewerOpts = append(a.viewerOpts, opts...)
	}
}

// State is a point-in-time copy of the app and its viewer.
type State struct {
	Topics      []curriculum.Topic
	Current     *curriculum.Topic
	Loading     bool
	Seeding     bool
	TopicsPhase viewer.Phase
	TopicsErr   error
	Viewer      viewer.State
}

// App owns the topic list and coordinates the initial load, topic selection
// and the reload after seeding.
type App struct {
	source     Source
	viewer     *viewer.Viewer
	viewerOpts []viewer.Option

	mu          sync.Mutex
	topics      []curriculum.Topic
	current     *curriculum.Topic
	loading     bool
	seeding     bool
	loadGen     uint64
	topicsPhase viewer.Phase
	topicsErr   error
}

// New creates an app reading from source. Nothing is fetched until LoadTopics.
func New(source Source, opts ...Option) *App {
	a := &App{source: source}
	for _, opt := range opts {
		opt(a)
	}
	a.viewer = viewer.New(source, a.viewerOpts...)
	return a
}

// Viewer returns the lesson viewer driven by this app.
func (a *App) Viewer() *viewer.Viewer {
	return a.viewer
}

// LoadTopics fetches the topic list. On success the list is replaced and its
// first topic becomes current; on failure the previous list is kept and the
// error is recorded. The loading flag is cleared in both cases.
func (a *App) LoadTopics(ctx context.Context) error {
	a.mu.Lock()
	a.loadGen++
	gen := a.loadGen
	a.loading = true
	a.topicsPhase = viewer.PhaseLoading
	a.mu.Unlock()

	topics, err := a.source.Topics(ctx)

	a.mu.Lock()
	if gen != a.loadGen {
		a.mu.Unlock()
		slog.Debug("discarding stale topic list")
		return viewer.ErrSuperseded
	}
	a.loading = false
	if err != nil {
		a.topicsPhase = viewer.PhaseFailed
		a.topicsErr = err
		a.mu.Unlock()
		slog.Warn("topic load failed", "error", err)
		return fmt.Errorf("loading topics: %w", err)
	}
	a.topics = topics
	a.topicsErr = nil
	if len(topics) == 0 {
		a.topicsPhase = viewer.PhaseEmpty
	} else {
		a.topicsPhase = viewer.PhaseLoaded
	}
	var first *curriculum.Topic
	if len(topics) > 0 {
		t := topics[0]
		first = &t
	}
	a.current = first
	a.mu.Unlock()

	slog.Debug("topics loaded", "count", len(topics))
	return a.viewer.SelectTopic(ctx, first)
}

// SelectTopic makes the topic with the given id current and loads its lessons.
func (a *App) SelectTopic(ctx context.Context, topicID string) error {
	a.mu.Lock()
	var topic *curriculum.Topic
	for i := range a.topics {
		if a.topics[i].ID == topicID {
			t := a.topics[i]
			topic = &t
			break
		}
	}
	if topic == nil {
		a.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}
	a.current = topic
	a.mu.Unlock()

	return a.viewer.SelectTopic(ctx, topic)
}

// Seed asks the source to populate sample content, then reloads the topic
// list whether or not seeding succeeded. Only one seed runs at a time.
func (a *App) Seed(ctx context.Context) error {
	a.mu.Lock()
	if a.seeding {
		a.mu.Unlock()
		return ErrSeedInProgress
	}
	a.seeding = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.seeding = false
		a.mu.Unlock()
	}()

	var seedErr error
	if err := a.source.Seed(ctx); err != nil {
		slog.Warn("seed failed, reloading topics anyway", "error", err)
		seedErr = fmt.Errorf("seeding: %w", err)
	}
	return errors.Join(seedErr, a.LoadTopics(ctx))
}

// State returns a copy of the current state.
func (a *App) State() State {
	a.mu.Lock()
	s := State{
		Topics:      append([]curriculum.Topic(nil), a.topics...),
		Loading:     a.loading,
		Seeding:     a.seeding,
		TopicsPhase: a.topicsPhase,
		TopicsErr:   a.topicsErr,
	}
	if a.current != nil {
		t := *a.current
		s.Current = &t
	}
	a.mu.Unlock()

	s.Viewer = a.viewer.State()
	return s
}
