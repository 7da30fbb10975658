package problemgen

import "github.com/kevinraymond/homeschool/internal/llm"

// ProblemSchema defines the JSON schema for LLM problem generation responses.
var ProblemSchema = &llm.Schema{
	Name:        "practice-problem",
	Description: "A single multiple-choice practice problem with answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question shown to the student",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 answer options, one of which is correct",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The text of the correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the answer is correct, age-appropriate for a child",
			},
		},
		"required":             []any{"question", "options", "correct_answer", "explanation"},
		"additionalProperties": false,
	},
}
