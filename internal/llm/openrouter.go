package llm

import "fmt"

const (
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultHuggingFaceBaseURL = "https://router.huggingface.co/v1"
)

// OpenRouterProvider wraps OpenAIProvider with OpenRouter-specific defaults.
// OpenRouter exposes an OpenAI-compatible API, so the underlying SDK is reused.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	inner, err := newCompatProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, defaultOpenRouterBaseURL)
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// HuggingFaceProvider targets the Hugging Face inference router, which
// accepts OpenAI chat completion requests for hosted instruct models.
type HuggingFaceProvider struct {
	*OpenAIProvider
}

// NewHuggingFaceProvider creates a provider targeting Hugging Face.
func NewHuggingFaceProvider(cfg HuggingFaceConfig) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface API key is required")
	}

	inner, err := newCompatProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, defaultHuggingFaceBaseURL)
	if err != nil {
		return nil, err
	}
	return &HuggingFaceProvider{OpenAIProvider: inner}, nil
}

func newCompatProvider(apiKey, model, baseURL, fallbackURL string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = fallbackURL
	}
	return newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
	})
}
