package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		model   string
		wantErr bool
	}{
		{"vendor prefix kept", OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o-mini"}, "openai/gpt-4o-mini", false},
		{"free tier suffix kept", OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3.1-8b-instruct:free"}, "meta-llama/llama-3.1-8b-instruct:free", false},
		{"missing key", OpenRouterConfig{Model: "openai/gpt-4o-mini"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.model)
			}
		})
	}
}

func TestOpenRouterProvider_SendsAttribution(t *testing.T) {
	var title, referer, user string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		referer = r.Header.Get("HTTP-Referer")
		var body struct {
			User string `json:"user"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		user = body.User

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "gen-1",
			"object": "chat.completion",
			"model":  "openai/gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Count up from 8."},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17},
		})
	}))
	defer server.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o-mini", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithStudent(context.Background(), "stu-9")
	if _, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "Hint for 8 + 5?"}}, MaxTokens: 64}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if title != openRouterTitle {
		t.Errorf("X-Title = %q, want %q", title, openRouterTitle)
	}
	if referer != openRouterReferer {
		t.Errorf("HTTP-Referer = %q, want %q", referer, openRouterReferer)
	}
	if user != "stu-9" {
		t.Errorf("user = %q, want stu-9", user)
	}
}
