package curriculum

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// catalogueFile is the on-disk layout: one topic per file with its lessons and
// exercises nested inside.
type catalogueFile struct {
	Topic   `yaml:",inline"`
	Order   int               `yaml:"order"`
	Lessons []catalogueLesson `yaml:"lessons"`
}

type catalogueLesson struct {
	Lesson    `yaml:",inline"`
	Exercises []Exercise `yaml:"exercises"`
}

type loadedTopic struct {
	topic   Topic
	order   int
	lessons []Lesson
}

// Loader serves curriculum content from a directory of YAML catalogue files.
// It satisfies the same source contract as the HTTP API client.
type Loader struct {
	rootDir   string
	topics    []loadedTopic
	exercises map[string][]Exercise
	mu        sync.RWMutex
}

// NewLoader creates a new curriculum loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{rootDir: rootDir}

	if err := l.reload(); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	slog.Info("curriculum loaded", "path", rootDir, "topics", len(l.topics))
	return l, nil
}

// Topics returns all topics ordered by their order field, then id.
func (l *Loader) Topics(_ context.Context) ([]Topic, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	topics := make([]Topic, 0, len(l.topics))
	for _, t := range l.topics {
		topics = append(topics, t.topic)
	}
	return topics, nil
}

// Lessons returns the lessons of a topic in file order. An unknown topic has no
// lessons.
func (l *Loader) Lessons(_ context.Context, topicID string) ([]Lesson, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, t := range l.topics {
		if t.topic.ID == topicID {
			return append([]Lesson{}, t.lessons...), nil
		}
	}
	return []Lesson{}, nil
}

// Exercises returns the exercises of a lesson.
func (l *Loader) Exercises(_ context.Context, lessonID string) ([]Exercise, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return append([]Exercise{}, l.exercises[lessonID]...), nil
}

// Seed re-reads the catalogue directory, picking up edited or added files.
func (l *Loader) Seed(_ context.Context) error {
	if err := l.reload(); err != nil {
		return fmt.Errorf("reloading curriculum: %w", err)
	}
	slog.Info("curriculum reloaded", "topics", len(l.topics))
	return nil
}

func (l *Loader) reload() error {
	var topics []loadedTopic
	exercises := make(map[string][]Exercise)

	err := filepath.WalkDir(l.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		file, ok := readCatalogueFile(path)
		if !ok {
			return nil
		}

		t := loadedTopic{topic: file.Topic, order: file.Order}
		for _, cl := range file.Lessons {
			if cl.ID == "" {
				slog.Warn("skipping lesson without id", "path", path, "title", cl.Title)
				continue
			}
			t.lessons = append(t.lessons, cl.Lesson)
			exercises[cl.ID] = append(exercises[cl.ID], cl.Exercises...)
		}
		topics = append(topics, t)
		return nil
	})
	if err != nil {
		return err
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].order != topics[j].order {
			return topics[i].order < topics[j].order
		}
		return topics[i].topic.ID < topics[j].topic.ID
	})

	l.mu.Lock()
	l.topics = topics
	l.exercises = exercises
	l.mu.Unlock()

	return nil
}

func readCatalogueFile(path string) (catalogueFile, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable catalogue file", "path", path, "error", err)
		return catalogueFile{}, false
	}

	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid catalogue YAML", "path", path, "error", err)
		return catalogueFile{}, false
	}

	if file.ID == "" {
		return catalogueFile{}, false // Not a topic file
	}
	return file, true
}
