package console_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-playground/internal/api"
	"github.com/p-n-ai/pai-playground/internal/api/apitest"
	"github.com/p-n-ai/pai-playground/internal/app"
	"github.com/p-n-ai/pai-playground/internal/console"
	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/events"
	"github.com/p-n-ai/pai-playground/internal/progress"
	"github.com/p-n-ai/pai-playground/internal/report"
	"github.com/p-n-ai/pai-playground/internal/view"
	"github.com/p-n-ai/pai-playground/internal/viewer"
)

type harness struct {
	engine  *console.Engine
	app     *app.App
	backend *apitest.Backend
	events  *events.MemoryLogger
	tracker *progress.InMemoryTracker
}

func newHarness(t *testing.T, backend *apitest.Backend) *harness {
	t.Helper()
	srv := apitest.NewServer(t, backend)
	client := api.New(srv.URL)

	logger := events.NewMemoryLogger()
	tracker := progress.NewInMemoryTracker()
	rec := console.NewRecorder("sess-1", logger, tracker)
	a := app.New(client, app.WithViewerOptions(viewer.WithGradeHook(rec.OnGrade)))
	require.NoError(t, a.LoadTopics(t.Context()))

	return &harness{
		engine:  console.NewEngine(console.EngineConfig{App: a, Source: client.BaseURL(), Recorder: rec}),
		app:     a,
		backend: backend,
		events:  logger,
		tracker: tracker,
	}
}

func (h *harness) run(t *testing.T, line string) string {
	t.Helper()
	out, err := h.engine.Handle(t.Context(), line)
	require.NoError(t, err)
	return out
}

func twoTopicBackend() *apitest.Backend {
	b := apitest.ScenarioBackend()
	b.Topics = append(b.Topics, curriculum.Topic{ID: "t2", Title: "Loops"})
	b.Lessons["t2"] = []curriculum.Lesson{
		{ID: "l3", Title: "For", Level: "beginner"},
		{ID: "l4", Title: "While", Level: "intermediate"},
	}
	b.Exercises["l4"] = []curriculum.Exercise{
		{ID: "e9", Type: curriculum.ExerciseText, Question: "Loop keyword?", Answer: "while"},
	}
	return b
}

func TestEngine_MCQScenario(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	assert.Contains(t, h.run(t, "/choose 1 B"), "selected B")
	assert.Equal(t, "Exercise 1: Correct! Arithmetic.", h.run(t, "/check 1"))

	h.run(t, "/choose 1 A")
	assert.Equal(t, "Exercise 1: Not quite. Arithmetic.", h.run(t, "/check 1"))

	assert.Contains(t, h.run(t, "/show"), "Not quite. Arithmetic.")
}

func TestEngine_TextScenario(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	h.run(t, "/answer 2   console.writeline ")
	out := h.run(t, "/check 2")

	assert.True(t, strings.HasPrefix(out, "Exercise 2: Correct!"), out)
}

func TestEngine_CheckRecordsAttempts(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	h.run(t, "/choose 1 A")
	h.run(t, "/check 1")
	h.run(t, "/choose 1 B")
	h.run(t, "/check 1")

	got := h.events.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "sess-1", got[1].SessionID)
	assert.Equal(t, "t1", got[1].TopicID)
	assert.Equal(t, "l1", got[1].LessonID)
	assert.Equal(t, "e1", got[1].ExerciseID)
	assert.Equal(t, "mcq", got[1].ExerciseType)
	assert.True(t, got[1].Correct)

	assert.Equal(t, "Checked 2 answers, 1 correct (50%).", h.run(t, "/progress"))
}

func TestEngine_ProgressEmpty(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())
	assert.Equal(t, "No answers checked yet.", h.run(t, "/progress"))
}

func TestEngine_WrongAnswerKind(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	assert.Contains(t, h.run(t, "/answer 1 B"), "multiple choice")
	assert.Contains(t, h.run(t, "/choose 2 A"), "typed answer")
	assert.Contains(t, h.run(t, "/choose 1 Z"), "Choose one of: A, B")
	assert.Empty(t, h.app.State().Viewer.Answers)
}

func TestEngine_BadIndexes(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	tests := []struct {
		line string
		want string
	}{
		{"/topic 0", "pick a number from 1 to 1"},
		{"/topic x", "Usage: /topic <n>"},
		{"/lesson 5", "Usage: /lesson <n>"},
		{"/check 3", "pick a number from 1 to 2"},
		{"/choose", "Usage: /choose <n> <key>"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Contains(t, h.run(t, tt.line), tt.want)
		})
	}
}

func TestEngine_TopicAndLessonNavigation(t *testing.T) {
	h := newHarness(t, twoTopicBackend())
	h.run(t, "/choose 1 B")

	out := h.run(t, "/topic 2")
	assert.Contains(t, out, "> 2. Loops")
	assert.Contains(t, out, "> 1. For")
	assert.Contains(t, out, view.NoExercises)
	assert.Empty(t, h.app.State().Viewer.Answers)

	out = h.run(t, "/lesson 2")
	assert.Contains(t, out, "> 2. While (level: intermediate)")
	assert.Contains(t, out, "Loop keyword?")

	h.run(t, "/answer 1 WHILE")
	assert.Contains(t, h.run(t, "/check 1"), "Correct!")
}

func TestEngine_Seed(t *testing.T) {
	b := apitest.ScenarioBackend()
	b.OnSeed = func(b *apitest.Backend) {
		b.Topics = append(b.Topics, curriculum.Topic{ID: "t2", Title: "Loops"})
	}
	h := newHarness(t, b)

	out := h.run(t, "/seed")

	assert.Contains(t, out, "2. Loops")
	assert.Contains(t, out, view.SeedLabel)
	assert.Equal(t, 2, b.Calls(apitest.RouteTopics))
}

func TestEngine_SeedFailure(t *testing.T) {
	b := apitest.ScenarioBackend()
	h := newHarness(t, b)
	b.SetStatus(apitest.RouteSeed, http.StatusInternalServerError)

	out := h.run(t, "/seed")

	assert.Contains(t, out, "Error: seeding:")
	assert.Contains(t, out, "1. Basics")
	assert.Equal(t, 2, b.Calls(apitest.RouteTopics))
	assert.False(t, h.app.State().Seeding)
}

func TestEngine_TopicsFailureIsVisible(t *testing.T) {
	b := apitest.ScenarioBackend()
	h := newHarness(t, b)
	b.SetStatus(apitest.RouteTopics, http.StatusBadGateway)

	out := h.run(t, "/topics")

	assert.Contains(t, out, "Could not load topics")
	assert.Contains(t, out, "1. Basics")
}

func TestEngine_Export(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())
	h.run(t, "/choose 1 B")
	h.run(t, "/check 1")
	path := filepath.Join(t.TempDir(), "results.xlsx")

	out := h.run(t, "/export "+path)
	assert.Equal(t, "Saved 2 exercises to "+path+".", out)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, report.ResultCorrect, rows[1][5])
}

func TestEngine_ExportUsage(t *testing.T) {
	h := newHarness(t, &apitest.Backend{})
	assert.Contains(t, h.run(t, "/export"), "Usage")
	assert.Equal(t, "No lesson selected.", h.run(t, "/export out.xlsx"))
}

func TestEngine_HelpAndUnknown(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	assert.Contains(t, h.run(t, "/help"), "/choose <n> <key>")
	assert.Contains(t, h.run(t, "hello there"), "Commands:")
	assert.Equal(t, "Unknown command: /dance\nUse /help to see commands.", h.run(t, "/dance"))
	assert.Empty(t, h.run(t, "   "))
}

func TestEngine_Quit(t *testing.T) {
	h := newHarness(t, apitest.ScenarioBackend())

	out, err := h.engine.Handle(context.Background(), "/quit")
	assert.True(t, errors.Is(err, console.ErrQuit))
	assert.Equal(t, "Bye!", out)
}
