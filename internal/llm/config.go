package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "huggingface", "mock"
	Provider string `yaml:"provider"`

	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	OpenRouter  OpenRouterConfig  `yaml:"openrouter"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Retry       RetryConfig       `yaml:"retry"`

	// Timeout bounds a single logical LLM request, retries included.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// HuggingFaceConfig holds configuration for the Hugging Face inference
// router, which speaks the OpenAI chat completions protocol.
type HuggingFaceConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "meta-llama/Llama-3.1-8B-Instruct"
	BaseURL string `yaml:"base_url"` // Default: "https://router.huggingface.co/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		HuggingFace: HuggingFaceConfig{
			Model: "meta-llama/Llama-3.1-8B-Instruct",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overlays MOCKPREP_* environment variables onto cfg.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Provider, "MOCKPREP_LLM_PROVIDER")

	set(&c.Anthropic.APIKey, "MOCKPREP_ANTHROPIC_API_KEY")
	set(&c.Anthropic.Model, "MOCKPREP_ANTHROPIC_MODEL")

	set(&c.OpenAI.APIKey, "MOCKPREP_OPENAI_API_KEY")
	set(&c.OpenAI.Model, "MOCKPREP_OPENAI_MODEL")
	set(&c.OpenAI.BaseURL, "MOCKPREP_OPENAI_BASE_URL")

	set(&c.Gemini.APIKey, "MOCKPREP_GEMINI_API_KEY")
	set(&c.Gemini.Model, "MOCKPREP_GEMINI_MODEL")

	set(&c.OpenRouter.APIKey, "MOCKPREP_OPENROUTER_API_KEY")
	set(&c.OpenRouter.Model, "MOCKPREP_OPENROUTER_MODEL")

	set(&c.HuggingFace.APIKey, "MOCKPREP_HUGGINGFACE_API_KEY")
	set(&c.HuggingFace.Model, "MOCKPREP_HUGGINGFACE_MODEL")
	set(&c.HuggingFace.BaseURL, "MOCKPREP_HUGGINGFACE_BASE_URL")

	if v := os.Getenv("MOCKPREP_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter → Hugging Face) and returns a
// Config for the first provider whose key is found. Returns
// (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("HF_TOKEN"); k != "" {
		cfg.Provider = "huggingface"
		cfg.HuggingFace.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// HasKey reports whether the selected provider has credentials configured.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MOCKPREP_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MOCKPREP_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MOCKPREP_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("MOCKPREP_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "huggingface":
		if c.HuggingFace.APIKey == "" {
			return fmt.Errorf("MOCKPREP_HUGGINGFACE_API_KEY is required for the huggingface provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
