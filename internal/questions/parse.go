package questions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mockprep/internal/llm"
)

var errNoQuestions = errors.New("the model returned no interview questions")

type rawQuestion struct {
	ID       json.RawMessage `json:"id"`
	Question string          `json:"question"`
}

// ParseQuestions turns an extracted JSON payload into an ordered question
// list. A bare array is used as is; an object contributes its "questions"
// array, or nothing when that field is absent. Missing, null, empty and zero
// ids default to "q<position>"; numeric ids are stringified.
func ParseQuestions(payload json.RawMessage) ([]Question, error) {
	items, err := normalize(payload)
	if err != nil {
		return nil, err
	}
	if err := llm.ValidateJSON(QuestionListSchema, items); err != nil {
		return nil, err
	}

	var raw []rawQuestion
	if err := json.Unmarshal(items, &raw); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if len(raw) == 0 {
		return nil, errNoQuestions
	}

	out := make([]Question, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, r := range raw {
		id, err := questionID(r.ID, i)
		if err != nil {
			return nil, err
		}
		if id == ReservedID {
			return nil, fmt.Errorf("question %d uses the reserved id %q", i+1, ReservedID)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate question id %q", id)
		}
		seen[id] = true
		out = append(out, Question{ID: id, Text: strings.TrimSpace(r.Question)})
	}
	return out, nil
}

// normalize returns the JSON array holding the question objects.
func normalize(payload json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return trimmed, nil
	case bytes.HasPrefix(trimmed, []byte("{")):
		var wrapper struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode questions object: %w", err)
		}
		if len(wrapper.Questions) == 0 || string(wrapper.Questions) == "null" {
			return json.RawMessage("[]"), nil
		}
		return wrapper.Questions, nil
	default:
		return nil, errors.New("model output is neither a question array nor an object")
	}
}

func questionID(raw json.RawMessage, index int) (string, error) {
	fallback := fmt.Sprintf("q%d", index+1)
	if len(raw) == 0 || string(raw) == "null" {
		return fallback, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode question id: %w", err)
		}
		if s = strings.TrimSpace(s); s == "" {
			return fallback, nil
		}
		return s, nil
	}

	n := json.Number(raw)
	v, err := n.Int64()
	if err != nil {
		return "", fmt.Errorf("question id %s is not an integer", raw)
	}
	if v == 0 {
		return fallback, nil
	}
	return n.String(), nil
}
