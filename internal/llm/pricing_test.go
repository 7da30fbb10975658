package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model   string
		wantNil bool
		wantIn  float64
	}{
		{"gpt-4o-mini", false, 0.15},
		{"openai/gpt-4o-mini", false, 0.15},
		{"anthropic/claude-3-haiku-20240307", false, 0.25},
		{"llama3.2:1b", false, 0},
		{"made-up-model", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			if tt.wantNil {
				if c != nil {
					t.Fatalf("expected no pricing, got %+v", c)
				}
				return
			}
			if c == nil {
				t.Fatal("expected pricing")
			}
			if c.InputPerMTok != tt.wantIn {
				t.Errorf("input price = %v, want %v", c.InputPerMTok, tt.wantIn)
			}
		})
	}
}

func TestIsLocalModel(t *testing.T) {
	if !IsLocalModel("qwen2.5:3b") {
		t.Error("qwen2.5:3b should be local")
	}
	if IsLocalModel("gpt-4o") {
		t.Error("gpt-4o should not be local")
	}
	if IsLocalModel("meta-llama/llama-3.1-8b-instruct:free") {
		t.Error("routed models are not local")
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	got := c.Cost(2_000, 1_000)
	if math.Abs(got-0.007) > 1e-9 {
		t.Errorf("Cost = %v, want 0.007", got)
	}
}
