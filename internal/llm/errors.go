package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from a hosted provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse carries model output that failed to parse or did not
// match the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("model reply rejected: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means no usable backend answered.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "AI provider unavailable"
	}
	return fmt.Sprintf("AI provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means a structured reply was cut off. Content holds
// the partial text.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("model reply truncated at the token limit after %d bytes", len(e.Content))
}

// ErrBackendAPI is a non-2xx answer that is not a rate limit.
type ErrBackendAPI struct {
	Status int
	Body   string
}

func (e *ErrBackendAPI) Error() string {
	return fmt.Sprintf("AI backend returned HTTP %d: %s", e.Status, e.Body)
}

type ErrEmptyResponse struct {
	Model string
}

func (e *ErrEmptyResponse) Error() string {
	return fmt.Sprintf("model %q returned no text", e.Model)
}

// ErrTimeout is returned when a single call outlives llm.timeout.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("AI request gave up after %s", e.After)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrConnection means the local Ollama server could not be reached.
type ErrConnection struct {
	URL string
	Err error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("no Ollama server at %s (start it with `ollama serve`): %v", e.URL, e.Err)
}

func (e *ErrConnection) Unwrap() error { return e.Err }

// ErrorKind reduces err to a short label for log fields and metrics.
func ErrorKind(err error) string {
	var (
		rl      *ErrRateLimit
		invalid *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
		empty   *ErrEmptyResponse
		timeout *ErrTimeout
		conn    *ErrConnection
		api     *ErrBackendAPI
		unavail *ErrProviderUnavailable
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rl):
		return "rate_limit"
	case errors.As(err, &invalid):
		return "invalid_response"
	case errors.As(err, &maxTok):
		return "max_tokens"
	case errors.As(err, &empty):
		return "empty"
	case errors.As(err, &conn):
		return "connection"
	case errors.As(err, &api):
		return fmt.Sprintf("http_%d", api.Status)
	case errors.As(err, &unavail):
		return "unavailable"
	default:
		return "other"
	}
}

// IsProviderFailure reports whether err came from talking to a model
// rather than from the caller.
func IsProviderFailure(err error) bool {
	switch ErrorKind(err) {
	case "", "other", "canceled":
		return false
	}
	return true
}
