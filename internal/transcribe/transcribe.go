// Package transcribe turns a recorded answer into text.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/store"
)

// ErrEmptyAudio is returned for a recording with no content.
var ErrEmptyAudio = errors.New("transcribe: empty audio")

// ErrNoSpeech is returned when the recording held no recognizable speech.
var ErrNoSpeech = errors.New("transcribe: no speech recognized")

// Audio is one recorded answer.
type Audio struct {
	// Name is the upload file name. Its extension tells the service the
	// container format, e.g. "answer.webm".
	Name string
	Data io.Reader
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, a Audio) (string, error)
}

// Config configures the Whisper transcriber.
type Config struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`    // Default: "whisper-1"
	BaseURL  string `yaml:"base_url"` // Optional. Override for compatible APIs.
	Language string `yaml:"language"` // Optional ISO-639-1 hint, e.g. "en".
}

// Whisper implements Transcriber with the OpenAI audio transcription API.
type Whisper struct {
	client   *openai.Client
	model    string
	language string
	events   store.EventRepo
	logger   *slog.Logger
}

// NewWhisper creates a Whisper transcriber. events may be nil; a nil logger
// uses slog.Default().
func NewWhisper(cfg Config, events store.EventRepo, logger *slog.Logger) (*Whisper, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcription API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if logger == nil {
		logger = slog.Default()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &Whisper{
		client:   openai.NewClientWithConfig(config),
		model:    cfg.Model,
		language: cfg.Language,
		events:   events,
		logger:   logger,
	}, nil
}

// Transcribe uploads the recording and returns the trimmed transcript.
func (w *Whisper) Transcribe(ctx context.Context, a Audio) (string, error) {
	if a.Data == nil {
		return "", ErrEmptyAudio
	}
	name := a.Name
	if name == "" {
		name = "answer.webm"
	}

	start := time.Now()
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: name,
		Reader:   a.Data,
		Language: w.language,
	})
	latency := time.Since(start)
	w.record(ctx, latency, resp.Text, err)

	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", name, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (w *Whisper) record(ctx context.Context, latency time.Duration, text string, callErr error) {
	data := store.LLMRequestEventData{
		Provider:     "openai",
		Model:        w.model,
		Purpose:      llm.PurposeTranscribe,
		LatencyMs:    latency.Milliseconds(),
		Success:      callErr == nil,
		ResponseBody: text,
	}
	if callErr != nil {
		data.ErrorMessage = callErr.Error()
		w.logger.Warn("transcription failed", "model", w.model, "error", callErr)
	}
	if w.events == nil {
		return
	}
	if err := w.events.AppendLLMRequest(context.WithoutCancel(ctx), data); err != nil {
		w.logger.Warn("failed to record transcription event", "error", err)
	}
}
