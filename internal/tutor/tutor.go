// Package tutor provides the AI tutor: hints, answer feedback and concept
// explanations from a local or cloud language model.
package tutor

import (
	"context"
	"time"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/metrics"
	"github.com/kevinraymond/homeschool/internal/prompt"
)

// Context describes the problem in front of the student.
type Context = prompt.Context

// Tutor is implemented by *LocalTutor and *CloudTutor only.
type Tutor interface {
	// Initialize must succeed before any other method is used.
	Initialize(ctx context.Context) error
	GenerateHint(ctx context.Context, tc Context, level int) (*Hint, error)
	AssessAnswer(ctx context.Context, tc Context, answer string) (*Feedback, error)
	ExplainConcept(ctx context.Context, problem curriculum.Problem, studentAge int) (string, error)
	ModelInfo() ModelInfo

	sealed()
}

// Hint is one tutor hint.
type Hint struct {
	Text  string `json:"hint_text"`
	Level int    `json:"hint_level"`

	// Suggestion is an optional concrete next step; the built-in backends
	// leave it empty.
	Suggestion string `json:"suggestion,omitempty"`
}

// NextAction tells the caller what the student should do after feedback.
type NextAction string

const (
	NextContinue NextAction = "continue"
	NextRetry    NextAction = "retry"
	NextHint     NextAction = "hint"
	NextMoveOn   NextAction = "move_on"
)

// Feedback is the tutor's response to a submitted answer. IsCorrect is
// decided locally; only Text comes from the model.
type Feedback struct {
	IsCorrect     bool       `json:"is_correct"`
	Text          string     `json:"feedback_text"`
	Explanation   string     `json:"explanation,omitempty"`
	Encouragement string     `json:"encouragement"`
	NextAction    NextAction `json:"next_action"`
}

const (
	encourageCorrect   = "🎉 Great job!"
	encourageIncorrect = "💪 Keep trying!"
)

// ModelType distinguishes on-device from hosted inference.
type ModelType string

const (
	ModelLocal ModelType = "local"
	ModelCloud ModelType = "cloud"
)

// ModelInfo is a static description of the backend.
type ModelInfo struct {
	ModelType      ModelType `json:"model_type"`
	ModelName      string    `json:"model_name"`
	ModelSize      string    `json:"model_size,omitempty"`
	EstimatedSpeed string    `json:"estimated_speed"`
}

// engine holds what both backends share: a provider and sampling settings.
type engine struct {
	backend      ModelType
	provider     llm.Provider
	maxTokens    int
	hintTemp     float64
	feedbackTemp float64
}

func (e *engine) complete(ctx context.Context, purpose, text string, temperature float64) (string, error) {
	start := time.Now()
	resp, err := e.provider.Generate(llm.WithPurpose(ctx, purpose), llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: text}},
		MaxTokens:   e.maxTokens,
		Temperature: temperature,
	})
	metrics.ObserveTutor(string(e.backend), purpose, start, err)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (e *engine) hint(ctx context.Context, tc Context, level int) (*Hint, error) {
	level = prompt.ClampHintLevel(level)
	text, err := e.complete(ctx, llm.PurposeTutorHint, prompt.SocraticHint(tc, level), e.hintTemp)
	if err != nil {
		return nil, err
	}
	return &Hint{Text: text, Level: level}, nil
}

func (e *engine) assess(ctx context.Context, tc Context, answer string) (*Feedback, error) {
	correct := curriculum.AnswerMatches(answer, tc.Problem.CorrectAnswer)
	text, err := e.complete(ctx, llm.PurposeTutorFeedback, prompt.Feedback(tc, answer, correct), e.feedbackTemp)
	if err != nil {
		return nil, err
	}

	fb := &Feedback{IsCorrect: correct, Text: text}
	if correct {
		fb.Encouragement = encourageCorrect
		fb.NextAction = NextContinue
	} else {
		fb.Encouragement = encourageIncorrect
		fb.NextAction = NextRetry
	}
	return fb, nil
}

func (e *engine) explain(ctx context.Context, problem curriculum.Problem, age int) (string, error) {
	return e.complete(ctx, llm.PurposeTutorExplain, prompt.Explanation(problem, age), e.hintTemp)
}
