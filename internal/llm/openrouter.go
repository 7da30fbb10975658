package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// Shown on the OpenRouter dashboard next to each request.
	openRouterTitle   = "homeschool"
	openRouterReferer = "https://github.com/kevinraymond/homeschool"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// keep their vendor prefix ("openai/gpt-4o-mini") and are sent as given.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    baseURL,
		httpClient: &http.Client{Transport: attributionTransport{base: http.DefaultTransport}},
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributionTransport tags every request with the app's OpenRouter
// attribution headers.
type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(r)
}
