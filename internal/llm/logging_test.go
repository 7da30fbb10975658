package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kevinraymond/homeschool/internal/logger"
	"github.com/kevinraymond/homeschool/internal/metrics"
	"github.com/kevinraymond/homeschool/internal/store"
)

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestLogging_RecordsEvent(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage("Nice work!"),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, repo, logger.Nop())

	ctx := WithStudent(WithPurpose(context.Background(), PurposeTutorFeedback), "stu-1")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hello"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Purpose != PurposeTutorFeedback || ev.StudentID != "stu-1" || !ev.Success || ev.InputTokens != 12 || ev.OutputTokens != 4 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "[system]\nsys") || !strings.Contains(ev.RequestBody, "[user]\nhello") {
		t.Errorf("unexpected request body: %q", ev.RequestBody)
	}
	if ev.Provider != "mock" || ev.Model != "mock" {
		t.Errorf("provider/model = %q/%q", ev.Provider, ev.Model)
	}
	if ev.ResponseBody != "Nice work!" {
		t.Errorf("unexpected response body: %q", ev.ResponseBody)
	}
}

func TestLogging_FailureLogged(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	repo := &recordingRepo{err: errors.New("disk full")}
	log, logs := observedLogger()
	p := WithLogging(mock, repo, log)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events: %+v", repo.events)
	}
	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Error("expected failed request warning")
	}
	if logs.FilterMessage("failed to record llm request event").Len() != 1 {
		t.Error("expected event persistence warning")
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogging_Metrics(t *testing.T) {
	tokens := metrics.LLMTokens.WithLabelValues("mock", "mock", "output")
	failures := metrics.LLMErrors.WithLabelValues("mock", "rate_limit")
	beforeTok, beforeErr := testutil.ToFloat64(tokens), testutil.ToFloat64(failures)

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage("Try again!"), Usage: Usage{InputTokens: 9, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	p := WithLogging(mock, nil, nil)
	_, _ = p.Generate(context.Background(), Request{})
	_, _ = p.Generate(context.Background(), Request{})

	if got := testutil.ToFloat64(tokens) - beforeTok; got != 3 {
		t.Errorf("output tokens counted = %v, want 3", got)
	}
	if got := testutil.ToFloat64(failures) - beforeErr; got != 1 {
		t.Errorf("rate limit errors counted = %v, want 1", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{context.Canceled, "canceled"},
		{&ErrTimeout{}, "timeout"},
		{&ErrRateLimit{}, "rate_limit"},
		{&ErrInvalidResponse{Err: errors.New("x")}, "invalid_response"},
		{&ErrMaxTokensExceeded{}, "max_tokens"},
		{&ErrEmptyResponse{}, "empty"},
		{&ErrConnection{Err: errors.New("refused")}, "connection"},
		{&ErrBackendAPI{Status: 401}, "http_401"},
		{&ErrProviderUnavailable{}, "unavailable"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestProviderName(t *testing.T) {
	or, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "openai/gpt-4o-mini"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ProviderName(or); got != "openrouter" {
		t.Errorf("openrouter named %q", got)
	}
	if got := ProviderName(or.OpenAIProvider); got != "openai" {
		t.Errorf("openai named %q", got)
	}
	if got := ProviderName(NewOllamaProvider(OllamaConfig{})); got != "ollama" {
		t.Errorf("ollama named %q", got)
	}
}
