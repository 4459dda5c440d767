package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const topicsSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["_id", "title"],
    "properties": {
      "_id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "description": {"type": ["string", "null"]}
    }
  }
}`

const lessonsSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["_id", "title"],
    "properties": {
      "_id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "content": {"type": ["string", "null"]},
      "level": {"type": ["string", "null"]}
    }
  }
}`

const exercisesSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["_id", "question", "type"],
    "properties": {
      "_id": {"type": "string", "minLength": 1},
      "question": {"type": "string"},
      "type": {"type": "string"},
      "options": {
        "type": ["array", "null"],
        "items": {
          "type": "object",
          "required": ["key"],
          "properties": {
            "key": {"type": "string"},
            "text": {"type": ["string", "null"]}
          }
        }
      },
      "answer": {"type": ["string", "null"]},
      "explanation": {"type": ["string", "null"]}
    }
  }
}`

var (
	topicsSchema    = mustSchema("topics", topicsSchemaJSON)
	lessonsSchema   = mustSchema("lessons", lessonsSchemaJSON)
	exercisesSchema = mustSchema("exercises", exercisesSchemaJSON)
)

func mustSchema(name, src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling %s schema: %v", name, err))
	}
	return s
}

// validate reports schema violations in body. Callers check that body is JSON
// first.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(strings.Join(msgs, "; "))
}
