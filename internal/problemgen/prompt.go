package problemgen

import (
	"strings"

	"github.com/kevinraymond/homeschool/internal/prompt"
)

const systemPrompt = `You are a homeschool tutor creating practice problems for children.

Rules:
- Generate a single problem appropriate for the given topic, grade, and difficulty.
- The question should be clear, self-contained, and age-appropriate.
- Provide exactly 4 options where exactly one is correct. Distractors should reflect common mistakes, not random values.
- The correct_answer must be copied exactly from one of the options.
- The explanation should walk through the solution in one to three short sentences.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	b.WriteString(prompt.ProblemGeneration(input.Topic, input.Grade, input.Difficulty))
	b.WriteString("\n\nAlready asked in this session:")
	recent := recentQuestions(input.PriorQuestions, cfg.MaxPriorQuestions)
	if len(recent) == 0 {
		b.WriteString(" none")
	}
	for _, q := range recent {
		b.WriteString("\n- ")
		b.WriteString(q)
	}
	return b.String()
}

// recentQuestions returns up to limit of the newest distinct questions, oldest
// first. Repeats are matched case- and whitespace-insensitively.
func recentQuestions(prior []string, limit int) []string {
	seen := make(map[string]bool, len(prior))
	var out []string
	for i := len(prior) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		q := strings.TrimSpace(prior[i])
		key := strings.ToLower(strings.Join(strings.Fields(q), " "))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
