package llm

import (
	"context"
	"errors"
	"testing"
)

func TestFencedJSON_Extract(t *testing.T) {
	text := "Here you go:\n```json\n[{\"id\":\"q1\",\"question\":\"Why Go?\"}]\n```\nGood luck!"
	got := FencedJSON.Extract(text)
	if got != `[{"id":"q1","question":"Why Go?"}]` {
		t.Fatalf("unexpected capture: %q", got)
	}
	if FencedJSON.Extract("no fences here") != "" {
		t.Fatal("expected empty capture without a json fence")
	}
}

func TestFencedBlock_Extract(t *testing.T) {
	text := "```\n{\"questions\":[]}\n```"
	if got := FencedBlock.Extract(text); got != `{"questions":[]}` {
		t.Fatalf("unexpected capture: %q", got)
	}
}

func TestRawBody_Extract(t *testing.T) {
	if got := RawBody.Extract("  \n [1,2] \n"); got != "[1,2]" {
		t.Fatalf("unexpected capture: %q", got)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "json fence",
			text: "```json\n[{\"id\":\"q1\",\"question\":\"A\"}]\n```",
			want: `[{"id":"q1","question":"A"}]`,
		},
		{
			name: "plain fence",
			text: "Sure!\n```\n{\"questions\":[{\"question\":\"A\"}]}\n```",
			want: `{"questions":[{"question":"A"}]}`,
		},
		{
			name: "raw body",
			text: "  [{\"question\":\"A\"}]  ",
			want: `[{"question":"A"}]`,
		},
		{
			name: "json fence preferred over earlier plain fence",
			text: "```\nnotes\n```\n```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "empty json fence yields to plain fence capture",
			text: "{\"a\":1}\n```json\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if tt.want == "" {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractJSON_NotJSON(t *testing.T) {
	for _, text := range []string{"I cannot help with that.", "", "   ", "```json\nnot json\n```"} {
		_, err := ExtractJSON(text)
		var invErr *ErrInvalidResponse
		if !errors.As(err, &invErr) {
			t.Fatalf("ExtractJSON(%q): expected ErrInvalidResponse, got %T (%v)", text, err, err)
		}
	}
}

func TestExtractJSONWith_CustomChain(t *testing.T) {
	// Without the raw fallback an unfenced payload is not recovered.
	if _, err := ExtractJSONWith(`[1]`, FencedJSON, FencedBlock); err == nil {
		t.Fatal("expected error without RawBody in the chain")
	}
}

func TestGenerateJSON(t *testing.T) {
	mock := NewMockProvider(
		MockText("```json\n{\"ok\":true}\n```"),
		MockText("no payload"),
	)

	payload, resp, err := GenerateJSON(context.Background(), mock, UserPrompt("go", 100, 0.7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"ok":true}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
	if resp.Model != "mock" {
		t.Fatalf("expected mock model, got %q", resp.Model)
	}

	_, resp, err = GenerateJSON(context.Background(), mock, UserPrompt("go", 100, 0.7))
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if resp == nil {
		t.Fatal("expected response alongside extraction error")
	}
}
