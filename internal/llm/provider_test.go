package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsQueuedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"hint":"Count on from 7."}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"is_correct":true}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"hint":"Count on from 7."}` {
		t.Fatalf("unexpected first response %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"is_correct":true}` {
		t.Fatalf("unexpected second response %s", resp2.Content)
	}
	if n := mock.Remaining(); n != 0 {
		t.Fatalf("expected script exhausted, %d left", n)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "You are a patient tutor.",
		Messages: []Message{{Role: RoleUser, Content: "7 + 5 = ?"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "You are a patient tutor." {
		t.Fatalf("unexpected system prompt %q", mock.Calls[0].System)
	}
	if mock.Calls[0].Messages[0].Content != "7 + 5 = ?" {
		t.Fatalf("unexpected message %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestMockProvider_RecordsStudent(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"a"`)},
		MockResponse{Content: json.RawMessage(`"b"`)},
	)
	_, _ = mock.Generate(WithStudent(context.Background(), "stu-9"), Request{})
	_, _ = mock.Generate(context.Background(), Request{})

	if len(mock.Students) != 2 || mock.Students[0] != "stu-9" || mock.Students[1] != "" {
		t.Fatalf("unexpected students %q", mock.Students)
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	schema := &Schema{Name: "mock-check", Definition: map[string]any{
		"type":     "object",
		"required": []any{"hint"},
	}}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage("```json\n{\"hint\":\"ok\"}\n```")},
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	resp, err := mock.Generate(context.Background(), Request{Schema: schema})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"hint":"ok"}` {
		t.Fatalf("expected fence stripped, got %s", resp.Content)
	}

	_, err = mock.Generate(context.Background(), Request{Schema: schema})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Fatalf("expected %q, got %q", PurposeUnknown, p)
	}

	ctx = WithPurpose(ctx, PurposeTutorHint)
	if p := PurposeFrom(ctx); p != PurposeTutorHint {
		t.Fatalf("expected %q, got %q", PurposeTutorHint, p)
	}

	if p := PurposeFrom(WithPurpose(context.Background(), "")); p != PurposeUnknown {
		t.Fatalf("empty purpose: expected %q, got %q", PurposeUnknown, p)
	}
}

func TestStudentContext(t *testing.T) {
	ctx := context.Background()
	if s := StudentFrom(ctx); s != "" {
		t.Fatalf("expected no student, got %q", s)
	}
	ctx = WithStudent(ctx, "stu-1")
	if s := StudentFrom(ctx); s != "stu-1" {
		t.Fatalf("expected stu-1, got %q", s)
	}
	// An empty ID keeps the earlier attribution.
	if s := StudentFrom(WithStudent(ctx, "")); s != "stu-1" {
		t.Fatalf("expected stu-1 after empty WithStudent, got %q", s)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "or-test"}}, false},
		{"ollama without url", Config{Provider: "ollama"}, true},
		{"ollama with url", Config{Provider: "ollama", Ollama: OllamaConfig{BaseURL: "http://localhost:11434"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
