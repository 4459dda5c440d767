// Package apitest provides an in-process fake of the learning API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/p-n-ai/pai-playground/internal/curriculum"
)

// Route names accepted by Backend.Calls.
const (
	RouteTopics    = "topics"
	RouteSeed      = "seed"
	RouteLessons   = "lessons"
	RouteExercises = "exercises"
)

// Backend serves canned content over the real API routes and counts calls.
type Backend struct {
	Topics    []curriculum.Topic
	Lessons   map[string][]curriculum.Lesson
	Exercises map[string][]curriculum.Exercise

	// Status overrides the response status for a route. Zero means 200.
	Status map[string]int

	// OnSeed runs before a successful seed response, typically to add content.
	OnSeed func(b *Backend)

	mu    sync.Mutex
	calls map[string]int
}

// ScenarioBackend returns the single-topic C# scenario: topic t1 "Basics",
// lesson l1 "Intro", mcq exercise e1 (answer B) and text exercise e2
// (answer Console.WriteLine).
func ScenarioBackend() *Backend {
	return &Backend{
		Topics: []curriculum.Topic{{ID: "t1", Title: "Basics", Description: "First steps"}},
		Lessons: map[string][]curriculum.Lesson{
			"t1": {{ID: "l1", Title: "Intro", Content: "Console.WriteLine(\"Hi\");", Level: "beginner"}},
		},
		Exercises: map[string][]curriculum.Exercise{
			"l1": {
				{
					ID:       "e1",
					Type:     curriculum.ExerciseMCQ,
					Question: "2+2?",
					Options: []curriculum.Option{
						{Key: "A", Text: "3"},
						{Key: "B", Text: "4"},
					},
					Answer:      "B",
					Explanation: "Arithmetic.",
				},
				{
					ID:          "e2",
					Type:        curriculum.ExerciseText,
					Question:    "Which method prints a line?",
					Answer:      "Console.WriteLine",
					Explanation: "It writes a line to standard output.",
				},
			},
		},
	}
}

// NewServer starts an httptest server for b, closed when the test ends.
func NewServer(t testing.TB, b *Backend) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// Handler returns the API routes.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/topics", func(w http.ResponseWriter, r *http.Request) {
		b.serve(w, RouteTopics, func() any { return orEmpty(b.Topics) })
	})
	mux.HandleFunc("POST /api/seed", func(w http.ResponseWriter, r *http.Request) {
		b.serve(w, RouteSeed, func() any {
			if b.OnSeed != nil {
				b.OnSeed(b)
			}
			return map[string]string{"status": "seeded"}
		})
	})
	mux.HandleFunc("GET /api/topics/{id}/lessons", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.serve(w, RouteLessons, func() any { return orEmpty(b.Lessons[id]) })
	})
	mux.HandleFunc("GET /api/lessons/{id}/exercises", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.serve(w, RouteExercises, func() any { return orEmpty(b.Exercises[id]) })
	})
	return mux
}

// Calls returns how many requests hit route.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// SetStatus makes route answer with status from now on.
func (b *Backend) SetStatus(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Status == nil {
		b.Status = make(map[string]int)
	}
	b.Status[route] = status
}

func (b *Backend) serve(w http.ResponseWriter, route string, payload func() any) {
	b.mu.Lock()
	if b.calls == nil {
		b.calls = make(map[string]int)
	}
	b.calls[route]++
	status := b.Status[route]
	var body any
	if status == 0 || status == http.StatusOK {
		body = payload()
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if body == nil {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
