// Package console turns typed commands into playground actions and renders
// the resulting screen.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-playground/internal/app"
	"github.com/p-n-ai/pai-playground/internal/curriculum"
	"github.com/p-n-ai/pai-playground/internal/progress"
	"github.com/p-n-ai/pai-playground/internal/report"
	"github.com/p-n-ai/pai-playground/internal/view"
)

// ErrQuit is returned by Handle when the user asked to leave.
var ErrQuit = errors.New("quit")

const helpText = `Commands:
  /topics               reload the topic list
  /topic <n>            open topic n
  /lesson <n>           open lesson n of the current topic
  /choose <n> <key>     pick an option for exercise n
  /answer <n> <text>    type an answer for exercise n
  /check <n>            check exercise n
  /seed                 seed sample content
  /show                 show the screen again
  /progress             show your score
  /export <file.xlsx>   save this lesson's results as a spreadsheet
  /help                 show this help
  /quit                 leave`

// EngineConfig holds dependencies for the command engine.
type EngineConfig struct {
	App      *app.App
	Source   string // shown in the header, usually the API base URL
	Recorder *Recorder
}

// Engine processes one command line at a time.
type Engine struct {
	app      *app.App
	source   string
	recorder *Recorder
}

// NewEngine creates a command engine.
func NewEngine(cfg EngineConfig) *Engine {
	rec := cfg.Recorder
	if rec == nil {
		rec = NewRecorder("local", nil, nil)
	}
	return &Engine{
		app:      cfg.App,
		source:   cfg.Source,
		recorder: rec,
	}
}

// Screen renders the current state.
func (e *Engine) Screen() string {
	return view.Screen(e.source, e.app.State())
}

// Handle runs one line of input and returns the text to show. Failures of the
// requested action are reported in the text; the only error returned is
// ErrQuit.
func (e *Engine) Handle(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if !strings.HasPrefix(line, "/") {
		return helpText, nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	slog.Debug("handling command", "command", cmd)

	switch cmd {
	case "/topics":
		if err := e.app.LoadTopics(ctx); err != nil {
			return e.withError(err), nil
		}
		return e.Screen(), nil
	case "/topic":
		return e.handleTopic(ctx, rest), nil
	case "/lesson":
		return e.handleLesson(ctx, rest), nil
	case "/choose":
		return e.handleChoose(rest), nil
	case "/answer":
		return e.handleAnswer(rest), nil
	case "/check":
		return e.handleCheck(rest), nil
	case "/seed":
		if err := e.app.Seed(ctx); err != nil {
			if errors.Is(err, app.ErrSeedInProgress) {
				return view.SeedingLabel, nil
			}
			return e.withError(err), nil
		}
		return e.Screen(), nil
	case "/show":
		return e.Screen(), nil
	case "/progress":
		return e.handleProgress(ctx), nil
	case "/export":
		return e.handleExport(rest), nil
	case "/help":
		return helpText, nil
	case "/quit", "/exit":
		return "Bye!", ErrQuit
	default:
		return fmt.Sprintf("Unknown command: %s\nUse /help to see commands.", cmd), nil
	}
}

func (e *Engine) handleTopic(ctx context.Context, args string) string {
	topics := e.app.State().Topics
	n, err := index(args, len(topics))
	if err != nil {
		return "Usage: /topic <n>. " + err.Error()
	}
	if err := e.app.SelectTopic(ctx, topics[n].ID); err != nil {
		return e.withError(err)
	}
	return e.Screen()
}

func (e *Engine) handleLesson(ctx context.Context, args string) string {
	lessons := e.app.State().Viewer.Lessons
	n, err := index(args, len(lessons))
	if err != nil {
		return "Usage: /lesson <n>. " + err.Error()
	}
	if err := e.app.Viewer().SelectLesson(ctx, lessons[n].ID); err != nil {
		return e.withError(err)
	}
	return e.Screen()
}

func (e *Engine) handleChoose(args string) string {
	num, key, _ := strings.Cut(args, " ")
	ex, err := e.exercise(num)
	if err != nil {
		return "Usage: /choose <n> <key>. " + err.Error()
	}
	if ex.Type != curriculum.ExerciseMCQ {
		return fmt.Sprintf("Exercise %s takes a typed answer. Use /answer %s <text>.", num, num)
	}
	key = strings.TrimSpace(key)
	if _, ok := ex.Option(key); !ok {
		return fmt.Sprintf("No option %q. Choose one of: %s", key, optionKeys(ex))
	}
	if err := e.app.Viewer().SetAnswer(ex.ID, key); err != nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Exercise %s: selected %s.", num, key)
}

func (e *Engine) handleAnswer(args string) string {
	num, text, _ := strings.Cut(args, " ")
	ex, err := e.exercise(num)
	if err != nil {
		return "Usage: /answer <n> <text>. " + err.Error()
	}
	if ex.Type == curriculum.ExerciseMCQ {
		return fmt.Sprintf("Exercise %s is multiple choice. Use /choose %s <key>.", num, num)
	}
	if err := e.app.Viewer().SetAnswer(ex.ID, text); err != nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Exercise %s: answer saved.", num)
}

func (e *Engine) handleCheck(args string) string {
	ex, err := e.exercise(args)
	if err != nil {
		return "Usage: /check <n>. " + err.Error()
	}
	fb, err := e.app.Viewer().Check(ex.ID)
	if err != nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Exercise %s: %s", args, view.Feedback(fb))
}

func (e *Engine) handleProgress(ctx context.Context) string {
	s, err := e.recorder.Tracker().Summary(ctx, e.recorder.SessionID())
	if err != nil {
		return "Error: " + err.Error()
	}
	return formatSummary(s)
}

func (e *Engine) handleExport(path string) string {
	if path == "" {
		return "Usage: /export <file.xlsx>."
	}
	s := e.app.State().Viewer
	if s.ActiveLesson == nil {
		return "No lesson selected."
	}

	f, err := os.Create(path)
	if err != nil {
		return "Error: " + err.Error()
	}
	if err := report.WriteXLSX(f, *s.ActiveLesson, s.Exercises, s.Answers, s.Feedback); err != nil {
		_ = f.Close()
		return "Error: " + err.Error()
	}
	if err := f.Close(); err != nil {
		return "Error: " + err.Error()
	}
	slog.Info("results exported", "path", path, "lesson_id", s.ActiveLesson.ID)
	return fmt.Sprintf("Saved %d exercises to %s.", len(s.Exercises), path)
}

func (e *Engine) exercise(num string) (curriculum.Exercise, error) {
	exercises := e.app.State().Viewer.Exercises
	n, err := index(num, len(exercises))
	if err != nil {
		return curriculum.Exercise{}, err
	}
	return exercises[n], nil
}

func (e *Engine) withError(err error) string {
	return e.Screen() + "\nError: " + err.Error()
}

// index parses a 1-based position and returns it 0-based.
func index(arg string, n int) (int, error) {
	if n == 0 {
		return 0, errors.New("nothing to choose from")
	}
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("pick a number from 1 to %d", n)
	}
	return i - 1, nil
}

func optionKeys(ex curriculum.Exercise) string {
	keys := make([]string, 0, len(ex.Options))
	for _, op := range ex.Options {
		keys = append(keys, op.Key)
	}
	return strings.Join(keys, ", ")
}

func formatSummary(s progress.Summary) string {
	if s.Attempts == 0 {
		return "No answers checked yet."
	}
	return fmt.Sprintf("Checked %d answers, %d correct (%d%%).", s.Attempts, s.Correct, s.Correct*100/s.Attempts)
}
