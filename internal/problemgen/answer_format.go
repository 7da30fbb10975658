package problemgen

import (
	"fmt"
	"strings"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// AnswerFormatValidator rejects numeric answers that are not written in
// canonical form, and option lists with blank or repeated entries.
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(p *curriculum.Problem, _ GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	answer := strings.TrimSpace(p.CorrectAnswer)
	if typ, val := parseAnswer(answer); val != nil {
		if want := canonicalAnswer(typ, val); want != answer {
			return fail("%s answer %q should be written %q", typ, answer, want)
		}
	}

	seen := make(map[string]int, len(p.Options))
	for i, o := range p.Options {
		key := curriculum.NormalizeAnswer(o)
		if key == "" {
			return fail("option %d is empty", i+1)
		}
		if j, dup := seen[key]; dup {
			return fail("options %d and %d are both %q", j+1, i+1, strings.TrimSpace(o))
		}
		seen[key] = i
	}
	return nil
}
