package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// llmQuizResponse is the raw shape expected from the model before
// validation.
type llmQuizResponse struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// parseQuizResponse extracts structured questions from untrusted model
// text. It tolerates surrounding prose, JSON wrapped in markdown fences and
// trailing commas; semantic violations are left to the validator.
func parseQuizResponse(text string) ([]GeneratedQuestion, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var resp llmQuizResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("malformed quiz JSON: %w", err)
	}
	if len(resp.Questions) == 0 {
		return nil, errors.New("response contains no questions")
	}
	return resp.Questions, nil
}

// extractJSON pulls the outermost JSON object out of the model text.
func extractJSON(text string) (json.RawMessage, error) {
	text = stripCodeFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, errors.New("no JSON object found in model output")
	}

	candidate := text[start : end+1]
	candidate = removeTrailingCommas(candidate)

	if !json.Valid([]byte(candidate)) {
		return nil, errors.New("extracted text is not valid JSON")
	}
	return json.RawMessage(candidate), nil
}

// stripCodeFences removes markdown code fences (```json ... ```) that small
// models like to wrap their output in.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "\n")
	text = strings.ReplaceAll(text, "```", "\n")
	return text
}

// removeTrailingCommas drops commas that directly precede a closing brace or
// bracket, skipping string literals.
func removeTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			b.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}

		if ch == ',' {
			// Look ahead past whitespace; drop the comma if a closer follows.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		b.WriteByte(ch)
	}
	return b.String()
}
