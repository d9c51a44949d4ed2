package quizgen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// quizSchemaDef is the structural contract the model output must satisfy
// before any semantic check runs.
var quizSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question":       map[string]any{"type": "string"},
					"options":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"correct_answer": map[string]any{"type": "string"},
					"explanation":    map[string]any{"type": "string"},
					"topic":          map[string]any{"type": "string"},
					"difficulty":     map[string]any{"type": "string"},
					"passage":        map[string]any{"type": "string"},
				},
				"required": []any{"question", "options", "correct_answer", "explanation", "topic", "difficulty"},
			},
		},
	},
	"required": []any{"questions"},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// validateSchema checks raw model JSON against the quiz response schema.
func validateSchema(raw json.RawMessage) error {
	schemaOnce.Do(func() {
		defBytes, err := json.Marshal(quizSchemaDef)
		if err != nil {
			schemaErr = err
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			schemaErr = err
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://quiz-response.json", defParsed); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile("schema://quiz-response.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("compile quiz schema: %w", schemaErr)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledSchema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// validateQuiz runs the semantic checks on parsed questions. The returned
// error text is fed back to the model on retry, so every rejection names the
// specific violation.
func validateQuiz(questions []GeneratedQuestion, level string, numQuestions int) error {
	if len(questions) != numQuestions {
		return fmt.Errorf("expected exactly %d questions, got %d", numQuestions, len(questions))
	}

	readingPassage := ""
	for i, q := range questions {
		if q.Question == "" {
			return fmt.Errorf("question %d has empty question text", i+1)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d has %d options, exactly 4 required", i+1, len(q.Options))
		}
		seen := make(map[string]bool, 4)
		for _, opt := range q.Options {
			if seen[opt] {
				return fmt.Errorf("question %d has duplicate option %q", i+1, opt)
			}
			seen[opt] = true
		}
		if !seen[q.CorrectAnswer] {
			return fmt.Errorf("question %d: correct_answer %q is not one of the options", i+1, q.CorrectAnswer)
		}
		if q.Explanation == "" {
			return fmt.Errorf("question %d has empty explanation", i+1)
		}
		if !RecognizedTopic(q.Topic) {
			return fmt.Errorf("question %d has unrecognized topic %q", i+1, q.Topic)
		}
		if q.Difficulty != level {
			return fmt.Errorf("question %d has difficulty %q, requested %q", i+1, q.Difficulty, level)
		}

		if q.Topic == "Reading" {
			if q.Passage == "" {
				return fmt.Errorf("question %d is a Reading question without a passage", i+1)
			}
			if readingPassage == "" {
				readingPassage = q.Passage
			} else if q.Passage != readingPassage {
				return fmt.Errorf("question %d does not share the Reading passage of the earlier questions", i+1)
			}
		} else if q.Passage != "" {
			return fmt.Errorf("question %d has a passage but is not a Reading question", i+1)
		}
	}
	return nil
}
