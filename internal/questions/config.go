package questions

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Count is the number of questions requested per interview. Extra
	// questions returned by the model are dropped.
	Count int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Count:       5,
		MaxTokens:   500,
		Temperature: 0.7,
	}
}
