package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/store"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func newTestWhisper(t *testing.T, handler http.HandlerFunc, events store.EventRepo) *Whisper {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	w, err := NewWhisper(Config{APIKey: "test-key", BaseURL: server.URL + "/v1", Language: "en"}, events, nil)
	if err != nil {
		t.Fatalf("NewWhisper: %v", err)
	}
	return w
}

func TestWhisper_HappyPath(t *testing.T) {
	var gotModel, gotLang, gotFile, gotBody string
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		gotFile = hdr.Filename
		b, _ := io.ReadAll(f)
		gotBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "  I would start with the requirements.  "})
	}
	events := &recordingEvents{}
	tr := newTestWhisper(t, handler, events)

	text, err := tr.Transcribe(context.Background(), Audio{Name: "a1.webm", Data: strings.NewReader("RIFFDATA")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I would start with the requirements." {
		t.Errorf("text = %q", text)
	}
	if gotModel != "whisper-1" || gotLang != "en" || gotFile != "a1.webm" || gotBody != "RIFFDATA" {
		t.Errorf("unexpected upload: model=%q lang=%q file=%q body=%q", gotModel, gotLang, gotFile, gotBody)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected one event, got %d", len(events.events))
	}
	ev := events.events[0]
	if ev.Purpose != llm.PurposeTranscribe || !ev.Success {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestWhisper_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream failure", "type": "server_error"},
		})
	}
	events := &recordingEvents{}
	tr := newTestWhisper(t, handler, events)

	_, err := tr.Transcribe(context.Background(), Audio{Name: "a.webm", Data: strings.NewReader("x")})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(events.events) != 1 || events.events[0].Success {
		t.Errorf("expected failed event, got %+v", events.events)
	}
}

func TestWhisper_NoSpeech(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "   "})
	}
	tr := newTestWhisper(t, handler, nil)

	_, err := tr.Transcribe(context.Background(), Audio{Data: strings.NewReader("x")})
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("expected ErrNoSpeech, got %v", err)
	}
}

func TestWhisper_EmptyAudio(t *testing.T) {
	tr := newTestWhisper(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, nil)

	if _, err := tr.Transcribe(context.Background(), Audio{}); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestNewWhisper_RequiresKey(t *testing.T) {
	if _, err := NewWhisper(Config{}, nil, nil); err == nil {
		t.Error("expected error without API key")
	}
}
