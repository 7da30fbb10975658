package llm

import (
	"fmt"
	"net/http"
	"time"
)

// Config selects a hosted provider and its decorators. Environment and file
// loading live in the config package; this is the resolved form.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter",
	// "ollama" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Ollama     OllamaConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries. Zero disables it.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string // tests and proxies
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // any OpenAI-compatible server

	httpClient *http.Client
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // vendor-prefixed, e.g. "openai/gpt-4o-mini"
	BaseURL string
}

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration // per request
}

// RetryConfig shapes the exponential backoff of WithRetry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig picks small, inexpensive models: tutor replies are a few
// sentences long.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-3-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Ollama: OllamaConfig{
			BaseURL: DefaultOllamaURL,
			Model:   DefaultOllamaModel,
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Validate checks that the selected provider has what it needs to connect.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "ollama":
		if c.Ollama.BaseURL == "" {
			return fmt.Errorf("tutor.ollama_url is required for the ollama provider")
		}
		return nil
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	return nil
}
