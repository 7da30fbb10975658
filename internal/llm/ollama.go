package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2:1b"

	ollamaHealthTimeout = 5 * time.Second
)

// OllamaProvider talks to a local Ollama server over its HTTP API.
type OllamaProvider struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewOllamaProvider creates an Ollama provider. No network traffic happens
// until Generate or HealthCheck is called.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Format  any           `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body := ollamaGenerateRequest{
		Model:  p.model,
		Prompt: joinMessages(req.Messages),
		System: req.System,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.Schema != nil {
		body.Format = req.Schema.Definition
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, p.mapError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.mapError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrBackendAPI{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ErrInvalidResponse{Content: raw, Err: err}
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return nil, &ErrEmptyResponse{Model: p.model}
	}

	content, err := structuredContent(req.Schema, json.RawMessage(text))
	if err != nil {
		return nil, err
	}

	model := out.Model
	if model == "" {
		model = p.model
	}
	stop := out.DoneReason
	if stop == "" {
		stop = "stop"
	}
	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
			TotalTokens:  out.PromptEvalCount + out.EvalCount,
		},
		Model:      model,
		StopReason: stop,
	}, nil
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

// HealthCheck reports whether the server answers GET /api/tags within five
// seconds.
func (p *OllamaProvider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ollamaHealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("building ollama health request: %w", err)
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return p.mapError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ErrBackendAPI{Status: resp.StatusCode, Body: "health check failed"}
	}
	return nil
}

func (p *OllamaProvider) mapError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{After: p.timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ErrTimeout{After: p.timeout, Err: err}
	}
	return &ErrConnection{URL: p.baseURL, Err: err}
}

// joinMessages flattens a conversation into a single prompt.
func joinMessages(msgs []Message) string {
	if len(msgs) == 1 {
		return msgs[0].Content
	}
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}
