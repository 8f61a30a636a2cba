// Package feedback scores a completed interview in one batched LLM call and
// aggregates the per-question scores into a session score.
package feedback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/questions"
)

// Scorer scores every answer of an interview together.
type Scorer interface {
	Score(ctx context.Context, jobRole string, qs []questions.Question, answers map[string]string) (Scores, error)
}

// LLMScorer implements Scorer using the LLM provider.
type LLMScorer struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a new LLMScorer. A nil logger uses slog.Default().
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *LLMScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMScorer{provider: provider, config: cfg, logger: logger}
}

// Score issues a single completion request covering all question/answer
// pairs. Every failure is a *FeedbackError.
func (s *LLMScorer) Score(ctx context.Context, jobRole string, qs []questions.Question, answers map[string]string) (Scores, error) {
	if len(qs) == 0 {
		return Scores{}, &FeedbackError{Err: errors.New("there are no questions to score")}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeFeedback)
	req := llm.UserPrompt(buildPrompt(jobRole, qs, answers), s.config.MaxTokens, s.config.Temperature)

	payload, _, err := llm.GenerateJSON(ctx, s.provider, req)
	if err != nil {
		return Scores{}, &FeedbackError{Err: err}
	}

	scores, err := ParseFeedback(payload, qs, s.logger)
	if err != nil {
		return Scores{}, &FeedbackError{Err: err}
	}
	return scores, nil
}
