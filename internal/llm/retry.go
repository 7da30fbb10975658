package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with jittered exponential
// backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

type retryPolicy int

const (
	retryNever retryPolicy = iota
	retryOnce              // malformed output: the model may do better on a second try
	retryBackoff
)

// policyFor decides how err is retried.
func policyFor(err error) retryPolicy {
	var (
		maxTok  *ErrMaxTokensExceeded
		conn    *ErrConnection
		timeout *ErrTimeout
		api     *ErrBackendAPI
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok):
		return retryNever
	case errors.As(err, &conn), errors.As(err, &timeout):
		// A local server that is down or overloaded stays that way for the
		// length of a retry window.
		return retryNever
	case errors.As(err, &api):
		if api.Status >= 500 || api.Status == 429 {
			return retryBackoff
		}
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	default:
		return retryBackoff
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var err error
	usedOnce := false
	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch policyFor(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if usedOnce {
				return nil, err
			}
			usedOnce = true
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}
		t := time.NewTimer(r.backoff(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff honors a provider's Retry-After, otherwise grows the wait by
// Multiplier per attempt up to MaxWait with ±20% jitter.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	wait := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(math.Max(wait, 0))
}

// deadlineProvider bounds each Generate call, retries included.
type deadlineProvider struct {
	inner Provider
	limit time.Duration
}

// WithDeadline wraps p so every call gives up after limit and reports
// ErrTimeout. A non-positive limit returns p unchanged.
func WithDeadline(p Provider, limit time.Duration) Provider {
	if limit <= 0 {
		return p
	}
	return &deadlineProvider{inner: p, limit: limit}
}

func (d *deadlineProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.limit)
	defer cancel()
	resp, err := d.inner.Generate(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &ErrTimeout{After: d.limit, Err: err}
	}
	return resp, err
}

func (d *deadlineProvider) ModelID() string {
	return d.inner.ModelID()
}
