package session

import (
	"errors"
	"fmt"
)

// ErrHintLimit is returned when a problem has used its hint budget.
var ErrHintLimit = errors.New("hint limit reached")

// ErrHintsDisabled is returned for assessment problems whose section turns
// the tutor off.
var ErrHintsDisabled = errors.New("hints are disabled for this problem")

// ErrEnded is returned when answering after End.
var ErrEnded = errors.New("session has ended")

// UnknownProblemError is returned for a problem id not in the session.
type UnknownProblemError struct {
	ProblemID string
}

func (e *UnknownProblemError) Error() string {
	return fmt.Sprintf("problem %q is not part of this session", e.ProblemID)
}
