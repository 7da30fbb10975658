package tutor

import "fmt"

// NotInitializedError is returned when a tutor is used before Initialize
// succeeded.
type NotInitializedError struct {
	Backend ModelType
}

func (e *NotInitializedError) Error() string {
	if e.Backend == "" {
		return "tutor not initialized"
	}
	return fmt.Sprintf("%s tutor not initialized", e.Backend)
}

// InitializationError is returned when a backend cannot be made ready.
type InitializationError struct {
	Backend ModelType
	Hint    string
	Err     error
}

func (e *InitializationError) Error() string {
	msg := fmt.Sprintf("%s tutor initialization failed: %v", e.Backend, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *InitializationError) Unwrap() error { return e.Err }

// CloudInferenceError wraps any failure of the hosted model call.
type CloudInferenceError struct {
	Err error
}

func (e *CloudInferenceError) Error() string {
	return fmt.Sprintf("failed to get response from cloud AI: %v", e.Err)
}

func (e *CloudInferenceError) Unwrap() error { return e.Err }
