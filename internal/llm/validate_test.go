package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func scoreSchema() *Schema {
	return &Schema{
		Name:        "test-score",
		Description: "A single scored answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]any{"type": "string"},
				"score":    map[string]any{"type": "number", "minimum": 0, "maximum": 10},
				"feedback": map[string]any{"type": "string"},
				"strengths": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"id", "score"},
		},
	}
}

func TestValidateJSON_Valid(t *testing.T) {
	raw := json.RawMessage(`{"id":"q1","score":7.5,"feedback":"clear","strengths":["structure"]}`)
	if err := ValidateJSON(scoreSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateJSON_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"id":"q2","score":0}`)
	if err := ValidateJSON(scoreSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing required", `{"id":"q1"}`},
		{"score as string", `{"id":"q1","score":"eight"}`},
		{"score above range", `{"id":"q1","score":11}`},
		{"score below range", `{"id":"q1","score":-1}`},
		{"strengths not strings", `{"id":"q1","score":5,"strengths":[1,2]}`},
		{"malformed", `{not json}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(scoreSchema(), json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	if err := ValidateJSON(nil, raw); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateJSON_CachesPerSchemaValue(t *testing.T) {
	strict := scoreSchema()
	loose := scoreSchema()
	loose.Definition["properties"].(map[string]any)["score"] = map[string]any{"type": "number"}

	over := json.RawMessage(`{"id":"q1","score":12}`)
	if err := ValidateJSON(strict, over); err == nil {
		t.Fatal("expected strict schema to enforce the maximum")
	}
	if _, ok := compiled.Load(strict); !ok {
		t.Fatal("expected compiled schema to be cached")
	}
	// Same name, different definition: the cached strict schema must not leak.
	if err := ValidateJSON(loose, over); err != nil {
		t.Fatalf("loose schema rejected score 12: %v", err)
	}
	if err := ValidateJSON(strict, over); err == nil {
		t.Fatal("expected cached strict schema to still enforce the maximum")
	}
}

func TestValidateJSON_LargeIntegersKeepPrecision(t *testing.T) {
	s := &Schema{Name: "test-int", Definition: map[string]any{"type": "integer"}}
	if err := ValidateJSON(s, json.RawMessage(`9007199254740993`)); err != nil {
		t.Fatalf("expected integer to validate, got: %v", err)
	}
	if err := ValidateJSON(s, json.RawMessage(`1.5`)); err == nil {
		t.Fatal("expected 1.5 to be rejected as integer")
	}
}
