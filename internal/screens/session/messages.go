package session

import (
	"time"

	sess "github.com/kevinraymond/homeschool/internal/session"
	"github.com/kevinraymond/homeschool/internal/tutor"
)

// sessionStartedMsg is sent when the persisted session has been created.
type sessionStartedMsg struct {
	Session *sess.Session
	Err     error
}

// timerTickMsg is sent every second to update the clock.
type timerTickMsg time.Time

// hintReadyMsg carries the hint for ProblemID.
type hintReadyMsg struct {
	ProblemID string
	Hint      *tutor.Hint
	Err       error
}

// feedbackReadyMsg carries the tutor's response to the last answer.
type feedbackReadyMsg struct {
	ProblemID string
	Feedback  *tutor.Feedback
	Err       error
}

// sessionEndMsg is sent to trigger the session end flow.
type sessionEndMsg struct{}

// sessionFinishedMsg is sent once the result has been recorded.
type sessionFinishedMsg struct {
	Summary *sess.Summary
	Outcome *sess.Outcome
	Err     error
}
