// Package curriculum defines the topic, lesson and exercise shapes served by the
// learning API, and an offline catalogue that serves the same shapes from YAML.
package curriculum

// ExerciseType distinguishes how an exercise is answered and graded.
type ExerciseType string

const (
	ExerciseMCQ  ExerciseType = "mcq"
	ExerciseText ExerciseType = "text"
)

// Topic is a top-level curriculum unit grouping lessons.
type Topic struct {
	ID          string `json:"_id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Lesson is a unit of instructional content within a topic.
type Lesson struct {
	ID      string `json:"_id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Level   string `json:"level" yaml:"level"`
}

// Option is one choice of a multiple-choice exercise.
type Option struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// Exercise is a gradable question attached to a lesson.
type Exercise struct {
	ID          string       `json:"_id" yaml:"id"`
	Question    string       `json:"question" yaml:"question"`
	Type        ExerciseType `json:"type" yaml:"type"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string       `json:"answer" yaml:"answer"`
	Explanation string       `json:"explanation" yaml:"explanation"`
}

// Option returns the option with the given key.
func (e Exercise) Option(key string) (Option, bool) {
	for _, o := range e.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}
