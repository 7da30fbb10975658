package curriculum

import (
	"fmt"
	"strings"
)

// ValidationError reports every constraint a curriculum document violates.
type ValidationError struct {
	Kind       string   // "lesson", "unit", "curriculum" or "catalog"
	Violations []string // sorted, one entry per violated constraint
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed:\n  %s", e.Kind, strings.Join(e.Violations, "\n  "))
}
