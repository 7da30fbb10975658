package problemgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kevinraymond/homeschool/internal/curriculum"
	"github.com/kevinraymond/homeschool/internal/llm"
	"github.com/kevinraymond/homeschool/internal/metrics"
)

// LLMGenerator produces open-topic problems using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewLLMGenerator creates an LLMGenerator. Unset Config fields take their
// defaults.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg.withDefaults()}
}

// problemOutput is the raw LLM response before validation.
type problemOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// Generate produces a single problem for the given input context.
// All configured validators are run before returning.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*curriculum.Problem, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeProblemGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      ProblemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw problemOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	p := &curriculum.Problem{
		ID:            "ai-" + uuid.NewString(),
		Type:          "ai-" + slug(input.Topic),
		Question:      strings.TrimSpace(raw.Question),
		Options:       raw.Options,
		CorrectAnswer: strings.TrimSpace(raw.CorrectAnswer),
		Explanation:   strings.TrimSpace(raw.Explanation),
		Difficulty:    input.Difficulty,
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(p, input); verr != nil {
			return nil, verr
		}
	}

	metrics.ProblemsGenerated.WithLabelValues(p.Type, "llm").Inc()
	return p, nil
}

// slug lowercases topic and joins its words with dashes.
func slug(topic string) string {
	return strings.Join(strings.Fields(strings.ToLower(topic)), "-")
}
