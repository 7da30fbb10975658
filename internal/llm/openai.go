package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":       "gpt-4o",
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt-4.1":      "gpt-4.1",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

// OpenAIProvider implements Provider with the go-openai client. OpenRouter
// and other OpenAI-compatible servers are reached through BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.httpClient != nil {
		config.HTTPClient = cfg.httpClient
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, openaiModels),
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            openAIMessages(req),
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
		User:                StudentFrom(ctx),
	}
	if req.Schema != nil {
		format, err := openAIResponseFormat(req.Schema)
		if err != nil {
			return nil, err
		}
		chatReq.ResponseFormat = format
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in response")}
	}

	choice := resp.Choices[0]
	raw := json.RawMessage(choice.Message.Content)
	switch {
	case choice.FinishReason == openai.FinishReasonContentFilter:
		return nil, &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply withheld by content filter")}
	case choice.FinishReason == openai.FinishReasonLength && req.Schema != nil:
		return nil, &ErrMaxTokensExceeded{Content: raw}
	case len(raw) == 0:
		return nil, &ErrEmptyResponse{Model: p.model}
	}

	content, err := structuredContent(req.Schema, raw)
	if err != nil {
		return nil, err
	}

	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: stop,
	}, nil
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// openAIResponseFormat asks for JSON matching the schema. Strict mode is
// off because our schemas use optional fields; replies are validated
// locally instead.
func openAIResponseFormat(s *Schema) (*openai.ChatCompletionResponseFormat, error) {
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        s.Name,
			Description: s.Description,
			Schema:      json.RawMessage(def),
		},
	}, nil
}

func openAIMessages(req Request) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return &ErrProviderUnavailable{Err: err}
	}
	switch {
	case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case apiErr.HTTPStatusCode == http.StatusUnauthorized, apiErr.HTTPStatusCode == http.StatusForbidden:
		return &ErrBackendAPI{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	case apiErr.HTTPStatusCode == http.StatusBadRequest && apiErr.Code == "context_length_exceeded":
		return &ErrMaxTokensExceeded{}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
