package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/metrics"
	"github.com/kevinraymond/homeschool/internal/store"
)

// LoggingProvider records every request as an llm event and a log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logger.Logger
}

// WithLogging wraps p. repo may be nil, in which case requests are only
// logged.
func WithLogging(p Provider, repo store.EventRepo, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	name := ProviderName(p)
	return &LoggingProvider{
		inner:    p,
		provider: name,
		events:   repo,
		log:      log.With("component", "llm", "provider", name),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		StudentID:   StudentFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	if err != nil {
		ev.ErrorMessage = err.Error()
		metrics.LLMErrors.WithLabelValues(l.provider, ErrorKind(err)).Inc()
		l.log.Warn("llm request failed",
			"model", ev.Model, "purpose", ev.Purpose, "student_id", ev.StudentID,
			"kind", ErrorKind(err), "latency", elapsed, "error", err)
	} else {
		metrics.LLMTokens.WithLabelValues(l.provider, ev.Model, "input").Add(float64(ev.InputTokens))
		metrics.LLMTokens.WithLabelValues(l.provider, ev.Model, "output").Add(float64(ev.OutputTokens))
		l.log.Debug("llm request",
			"model", ev.Model, "purpose", ev.Purpose, "latency", elapsed,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	// A failed write never fails the request.
	if l.events != nil {
		if werr := l.events.AppendLLMRequest(ctx, ev); werr != nil {
			l.log.Warn("failed to record llm request event", "error", werr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// ProviderName names the backend behind p for events and logs.
func ProviderName(p Provider) string {
	switch p.(type) {
	case *AnthropicProvider:
		return "anthropic"
	case *OpenRouterProvider:
		return "openrouter"
	case *OpenAIProvider:
		return "openai"
	case *GeminiProvider:
		return "gemini"
	case *OllamaProvider:
		return "ollama"
	case *MockProvider:
		return "mock"
	default:
		return "unknown"
	}
}

// transcript renders a request the way `homeschool llm view` shows it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
