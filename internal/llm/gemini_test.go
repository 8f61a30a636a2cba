package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":    map[string]any{"type": "string"},
			"score": map[string]any{"type": "number"},
			"band":  map[string]any{"type": "string", "enum": []any{"good", "fair", "weak"}},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"id", "score"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["id"].Type != "STRING" {
		t.Fatalf("expected STRING for id, got %s", schema.Properties["id"].Type)
	}
	if schema.Properties["score"].Type != "NUMBER" {
		t.Fatalf("expected NUMBER for score, got %s", schema.Properties["score"].Type)
	}
	if len(schema.Properties["band"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["band"].Enum))
	}
	if schema.Properties["strengths"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for strengths, got %s", schema.Properties["strengths"].Type)
	}
	if schema.Properties["strengths"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for strengths items, got %s", schema.Properties["strengths"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestBuildGeminiSchema_NullableUnion(t *testing.T) {
	def := map[string]any{
		"type": []any{"object", "null"},
		"properties": map[string]any{
			"averageScore": map[string]any{"type": []any{"number", "null"}, "minimum": 0, "maximum": 10},
		},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" || schema.Nullable == nil || !*schema.Nullable {
		t.Fatalf("expected nullable OBJECT, got %+v", schema)
	}
	avg := schema.Properties["averageScore"]
	if avg.Type != "NUMBER" || avg.Nullable == nil || !*avg.Nullable {
		t.Fatalf("expected nullable NUMBER, got %+v", avg)
	}
	if avg.Minimum == nil || *avg.Minimum != 0 || avg.Maximum == nil || *avg.Maximum != 10 {
		t.Fatalf("expected 0..10 bounds, got %v..%v", avg.Minimum, avg.Maximum)
	}
}

func TestGeminiCompletion(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `[{"id":"q1",`},
				{Text: `"question":"Why?"}]`},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 8},
	}

	c, err := geminiCompletion(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.text != `[{"id":"q1","question":"Why?"}]` {
		t.Fatalf("expected joined non-thought text, got %q", c.text)
	}
	if c.truncated {
		t.Fatal("STOP must not be reported as truncated")
	}
	if c.usage.TotalTokens != 20 {
		t.Fatalf("expected 20 total tokens, got %d", c.usage.TotalTokens)
	}
}

func TestGeminiCompletion_Stops(t *testing.T) {
	cand := func(reason genai.FinishReason) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			FinishReason: reason,
			Content:      &genai.Content{Parts: []*genai.Part{{Text: `{"questionFeedback":[`}}},
		}}}
	}

	c, err := geminiCompletion(cand(genai.FinishReasonMaxTokens))
	if err != nil || !c.truncated {
		t.Fatalf("MAX_TOKENS: got truncated=%v err=%v", c.truncated, err)
	}
	_, err = c.response(nil)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}

	var inv *ErrInvalidResponse
	if _, err := geminiCompletion(cand(genai.FinishReasonSafety)); !errors.As(err, &inv) {
		t.Fatalf("SAFETY: expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
	blocked := &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety}}
	if _, err := geminiCompletion(blocked); !errors.As(err, &inv) {
		t.Fatalf("blocked prompt: expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want any
	}{
		{"rate limit", genai.APIError{Code: http.StatusTooManyRequests}, &ErrRateLimit{}},
		{"wrapped rate limit", fmt.Errorf("call: %w", genai.APIError{Code: http.StatusTooManyRequests}), &ErrRateLimit{}},
		{"bad key", genai.APIError{Code: http.StatusForbidden}, &ErrRejected{}},
		{"outage", genai.APIError{Code: http.StatusServiceUnavailable}, &ErrProviderUnavailable{}},
		{"network", errors.New("dial tcp: connection refused"), &ErrProviderUnavailable{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geminiError(tt.err)
			if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", tt.want) {
				t.Fatalf("geminiError(%v) = %T, want %T", tt.err, got, tt.want)
			}
		})
	}
}
