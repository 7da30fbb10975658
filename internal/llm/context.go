package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	studentKey contextKey = "llm_student"
)

// Purposes used in request events.
const (
	PurposeTutorHint     = "tutor-hint"
	PurposeTutorFeedback = "tutor-feedback"
	PurposeTutorExplain  = "tutor-explain"
	PurposeProblemGen    = "problem-gen"
	PurposeUnknown       = "unknown"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}

// WithStudent attributes requests made with ctx to a student, so parents can
// see how much AI help each child used.
func WithStudent(ctx context.Context, studentID string) context.Context {
	if studentID == "" {
		return ctx
	}
	return context.WithValue(ctx, studentKey, studentID)
}

// StudentFrom returns the student attributed by WithStudent, or "".
func StudentFrom(ctx context.Context) string {
	v, _ := ctx.Value(studentKey).(string)
	return v
}
