package problemgen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

const (
	maxQuestionRunes    = 500
	maxExplanationRunes = 1000
	optionsPerProblem   = 4
)

// StructuralValidator checks that a problem has every field a lesson screen
// renders, within length limits, and that its options include the answer.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(p *curriculum.Problem, _ GenerateInput) *ValidationError {
	if msg := structuralProblem(p); msg != "" {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	return nil
}

func structuralProblem(p *curriculum.Problem) string {
	text := []struct {
		field string
		value string
		limit int
	}{
		{"question", p.Question, maxQuestionRunes},
		{"explanation", p.Explanation, maxExplanationRunes},
		{"correct_answer", p.CorrectAnswer, 0},
	}
	for _, f := range text {
		n := utf8.RuneCountInString(f.value)
		switch {
		case strings.TrimSpace(f.value) == "":
			return f.field + " is empty"
		case f.limit > 0 && n > f.limit:
			return fmt.Sprintf("%s is %d characters, limit %d", f.field, n, f.limit)
		}
	}
	if len(p.Options) != optionsPerProblem {
		return fmt.Sprintf("want %d options, got %d", optionsPerProblem, len(p.Options))
	}
	if !p.HasOption(p.CorrectAnswer) {
		return fmt.Sprintf("correct_answer %q is not one of the options", p.CorrectAnswer)
	}
	return ""
}
