// Package llm talks to hosted and local language models on behalf of the
// tutor and the problem generator.
//
// Providers share one Request/Response shape. Decorators add deadlines,
// retries, caching and event logging around any Provider; see NewProvider.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates one reply for a Request.
type Provider interface {
	// Generate returns the model's reply. With req.Schema set, Content is
	// JSON validated against it; otherwise it is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, e.g. "claude-3-haiku-20240307".
	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema requests structured output. Nil means plain text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the reply must satisfy.
type Schema struct {
	// Name is a kebab-case identifier such as "tutor-hint".
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request, which may be
	// more specific than ModelID.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Text returns the reply as trimmed plain text.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Content))
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a short alias to a provider model ID. Unknown names are
// used as given.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
