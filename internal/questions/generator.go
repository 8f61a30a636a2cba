// Package questions obtains an ordered interview question list for a job
// role from an LLM provider.
package questions

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/mockprep/internal/llm"
)

// Generator produces the questions for one interview.
type Generator interface {
	Generate(ctx context.Context, jobRole string) ([]Question, error)
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	if cfg.Count <= 0 {
		cfg.Count = DefaultConfig().Count
	}
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate sends one completion request for jobRole and parses the reply.
// Every failure is a *GenerationError.
func (g *LLMGenerator) Generate(ctx context.Context, jobRole string) ([]Question, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return nil, &GenerationError{Err: errors.New("job role is required")}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	req := llm.UserPrompt(buildPrompt(jobRole, g.config.Count), g.config.MaxTokens, g.config.Temperature)

	payload, _, err := llm.GenerateJSON(ctx, g.provider, req)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	qs, err := ParseQuestions(payload)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if len(qs) > g.config.Count {
		qs = qs[:g.config.Count]
	}
	return qs, nil
}
