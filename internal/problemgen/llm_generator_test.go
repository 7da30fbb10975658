package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kevinraymond/homeschool/internal/llm"
)

func validProblemJSON() json.RawMessage {
	return json.RawMessage(`{
		"question": "What is 345 + 278?",
		"options": ["613", "623", "633", "523"],
		"correct_answer": "623",
		"explanation": "Add ones, tens and hundreds: 345 + 278 = 623."
	}`)
}

func TestLLMGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validProblemJSON()})
	gen := NewLLMGenerator(mock, DefaultConfig())

	p, err := gen.Generate(context.Background(), GenerateInput{
		Topic:      "Place Value",
		Grade:      3,
		Difficulty: 0.42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != "ai-place-value" {
		t.Errorf("unexpected type %q", p.Type)
	}
	if !strings.HasPrefix(p.ID, "ai-") {
		t.Errorf("unexpected id %q", p.ID)
	}
	if p.CorrectAnswer != "623" || len(p.Options) != 4 {
		t.Errorf("unexpected problem: %+v", p)
	}
	if p.Difficulty != 0.42 {
		t.Errorf("difficulty not carried: %v", p.Difficulty)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != ProblemSchema {
		t.Error("expected problem schema on request")
	}
	if req.System != systemPrompt {
		t.Error("expected system prompt")
	}
	msg := req.Messages[0].Content
	if !strings.Contains(msg, "Generate a Place Value practice problem for grade 3.") {
		t.Errorf("user message missing topic line:\n%s", msg)
	}
	if !strings.Contains(msg, "Difficulty level: 4/10") {
		t.Errorf("user message missing difficulty:\n%s", msg)
	}
	if !strings.Contains(msg, "Already asked in this session:\nNone") {
		t.Errorf("expected 'None' for prior questions:\n%s", msg)
	}
}

func TestLLMGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}})
	gen := NewLLMGenerator(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Topic: "time"})
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected wrapped ErrRateLimit, got %v", err)
	}
}

func TestLLMGenerate_BadJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	gen := NewLLMGenerator(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), GenerateInput{Topic: "time"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLLMGenerate_ValidatorRejects(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"question": "What is 2 + 2?",
		"options": ["3", "5", "4", "6"],
		"correct_answer": "5",
		"explanation": "Two and two."
	}`)})
	gen := NewLLMGenerator(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), GenerateInput{Topic: "addition"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Validator != "math-check" {
		t.Errorf("expected math-check failure, got %q", verr.Validator)
	}
}

func TestRecentQuestions(t *testing.T) {
	if got := recentQuestions(nil, 8); len(got) != 0 {
		t.Errorf("expected no questions, got %q", got)
	}
	got := recentQuestions([]string{"q1", "q2", " Q3 ", "q2", "q3"}, 2)
	if strings.Join(got, "|") != "q2|q3" {
		t.Errorf("recent = %q, want [q2 q3]", got)
	}
}

func TestNewLLMGenerator_FillsDefaults(t *testing.T) {
	gen := NewLLMGenerator(llm.NewMockProvider(), Config{MaxTokens: 128})
	if gen.config.MaxTokens != 128 {
		t.Errorf("MaxTokens = %d, want 128", gen.config.MaxTokens)
	}
	if len(gen.config.Validators) != 3 || gen.config.MaxPriorQuestions != 8 {
		t.Errorf("defaults not applied: %+v", gen.config)
	}
}

func TestBuildUserMessage_PriorQuestions(t *testing.T) {
	msg := buildUserMessage(GenerateInput{
		Topic:          "money",
		Grade:          2,
		Difficulty:     0.5,
		PriorQuestions: []string{"How many cents in a dime?"},
	}, DefaultConfig())
	if !strings.Contains(msg, "- How many cents in a dime?") {
		t.Errorf("prior question missing:\n%s", msg)
	}
}
