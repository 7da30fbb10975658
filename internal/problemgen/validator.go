package problemgen

import (
	"fmt"

	"github.com/kevinraymond/homeschool/internal/curriculum"
)

// Validator checks a generated problem for correctness.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator (for error messages
	// and logging), e.g. "structural", "math-check", "answer-format".
	Name() string

	// Validate checks the problem and returns nil if it passes.
	Validate(p *curriculum.Problem, input GenerateInput) *ValidationError
}

// ValidationError describes why a problem failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// UnknownTypeError is returned for a problem type the generator does not
// support.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown problem type: %s", e.Type)
}
