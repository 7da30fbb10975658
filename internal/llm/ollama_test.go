package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Model: "llama3.2:1b", Timeout: 2 * time.Second})
}

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaGenerateRequest
	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.2:1b",
			"response":          " What do you get if you count up 3 from 5? ",
			"done":              true,
			"prompt_eval_count": 40,
			"eval_count":        12,
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "hint please"}},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "What do you get if you count up 3 from 5?" {
		t.Errorf("unexpected text %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 52 {
		t.Errorf("expected 52 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if got.Model != "llama3.2:1b" || got.Prompt != "hint please" || got.Stream {
		t.Errorf("unexpected request body: %+v", got)
	}
	if got.Options.Temperature != 0.7 || got.Options.NumPredict != 150 {
		t.Errorf("unexpected options: %+v", got.Options)
	}
}

func TestOllamaProvider_Errors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		var apiErr *ErrBackendAPI
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected ErrBackendAPI, got %T: %v", err, err)
		}
		if apiErr.Status != 404 || apiErr.Body != "model not found" {
			t.Errorf("unexpected error fields: %+v", apiErr)
		}
	})

	t.Run("empty response", func(t *testing.T) {
		p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":"   ","done":true}`))
		})
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		var empty *ErrEmptyResponse
		if !errors.As(err, &empty) {
			t.Fatalf("expected ErrEmptyResponse, got %T: %v", err, err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(server.Close)
		p := NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		var timeout *ErrTimeout
		if !errors.As(err, &timeout) {
			t.Fatalf("expected ErrTimeout, got %T: %v", err, err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()
		p := NewOllamaProvider(OllamaConfig{BaseURL: url})

		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		var conn *ErrConnection
		if !errors.As(err, &conn) {
			t.Fatalf("expected ErrConnection, got %T: %v", err, err)
		}
		if !strings.Contains(err.Error(), "ollama serve") {
			t.Errorf("expected start instructions in %q", err.Error())
		}
	})
}

func TestOllamaProvider_SchemaValidated(t *testing.T) {
	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["format"] == nil {
			t.Error("expected format to carry the schema")
		}
		w.Write([]byte(`{"response":"{\"wrong\":1}","done":true}`))
	})
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
		Schema:   hintSchema(),
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	p := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	down := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	var apiErr *ErrBackendAPI
	if err := down.HealthCheck(context.Background()); !errors.As(err, &apiErr) {
		t.Fatalf("expected ErrBackendAPI, got %v", err)
	}
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	p := NewOllamaProvider(OllamaConfig{BaseURL: "http://example:11434/"})
	if p.baseURL != "http://example:11434" {
		t.Errorf("trailing slash not trimmed: %q", p.baseURL)
	}
	if p.ModelID() != DefaultOllamaModel {
		t.Errorf("expected default model, got %q", p.ModelID())
	}
	if p.timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", p.timeout)
	}
}
