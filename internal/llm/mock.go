package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. A non-nil Err is returned as is.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order. Calls and Students record
// each request and the student it was attributed to ("" when none).
// Once the script runs out every call fails with ErrProviderUnavailable,
// which is what the tutor treats as "no AI".
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	next     int
	Calls    []Request
	Students []string
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	m.Students = append(m.Students, StudentFrom(ctx))

	if m.next >= len(m.script) {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.script[m.next]
	m.next++
	if r.Err != nil {
		return nil, r.Err
	}

	// Scripted content goes through the same schema check as real replies.
	content, err := structuredContent(req.Schema, r.Content)
	if err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: r.Usage, Model: m.ModelID(), StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// Remaining reports how many scripted replies are left.
func (m *MockProvider) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.script) - m.next
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
