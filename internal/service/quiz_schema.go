package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"smartstudy/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidModelOutput marks model text that is empty or not a quiz.
var ErrInvalidModelOutput = errors.New("invalid model output")

const quizSchemaURL = "schema://smartstudy/quiz.json"

const quizSchemaDoc = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "options", "correct"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {"type": "string"}
          },
          "correct": {"type": "integer", "minimum": 0, "maximum": 3},
          "explanation": {"type": "string"}
        }
      }
    }
  }
}`

var (
	quizSchemaOnce sync.Once
	quizSchema     *jsonschema.Schema
	quizSchemaErr  error

	fencePattern = regexp.MustCompile("```(?:json)?\\s*")
)

func compiledQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(quizSchemaDoc))
		if err != nil {
			quizSchemaErr = fmt.Errorf("parse quiz schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(quizSchemaURL, doc); err != nil {
			quizSchemaErr = fmt.Errorf("add quiz schema: %w", err)
			return
		}
		quizSchema, quizSchemaErr = c.Compile(quizSchemaURL)
	})
	return quizSchema, quizSchemaErr
}

// StripCodeFences removes markdown code fences around a model reply.
func StripCodeFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(raw, ""))
}

// ParseQuizText turns raw model text into QuizData. Any failure wraps
// ErrInvalidModelOutput.
func ParseQuizText(raw string) (*domain.QuizData, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty model output", ErrInvalidModelOutput)
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: not JSON: %v", ErrInvalidModelOutput, err)
	}
	schema, err := compiledQuizSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}

	var quiz domain.QuizData
	if err := json.Unmarshal([]byte(cleaned), &quiz); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}
	return &quiz, nil
}
