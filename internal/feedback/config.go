package feedback

// Config controls the behavior of the LLMScorer.
type Config struct {
	// MaxTokens is the token budget for the batched scoring response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}
