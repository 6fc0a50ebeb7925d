// Package retry runs operations against flaky external services with
// classified errors and exponential backoff. The classifier decides per error
// whether to stop, retry on the normal schedule, or retry after the longer
// rate-limit backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Action is the classifier's verdict for one failed attempt.
type Action int

const (
	// Stop marks the error permanent; no further attempts are made.
	Stop Action = iota
	// Retry marks the error transient; the normal backoff schedule applies.
	Retry
	// After marks the error as a rate limit; the next attempt waits the
	// configured rate-limit backoff instead.
	After
)

// Classify maps an error to the Action to take.
type Classify func(err error) Action

// Policy configures the attempt count and backoff schedule.
type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	// OnRetry, when set, observes each failed attempt that will be retried.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// PermanentError wraps an error the classifier marked Stop, so callers can
// distinguish "gave up" from "cannot succeed".
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Do runs op until it succeeds, the classifier stops it, the attempts are
// exhausted, or ctx is cancelled while waiting out a backoff. The backoff
// doubles after every wait; an After verdict swaps in the rate-limit backoff
// for the next wait.
func Do[T any](ctx context.Context, p Policy, classify Classify, op func() (T, error)) (T, error) {
	var zero T
	wait := p.InitialBackoff

	for attempt := 1; ; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		verdict := classify(err)
		if verdict == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt >= p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}
		if verdict == After {
			wait = p.RateLimitBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-time.After(wait):
			wait *= 2
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// DoVoid is Do for operations without a result value.
func DoVoid(ctx context.Context, p Policy, classify Classify, op func() error) error {
	_, err := Do(ctx, p, classify, func() (struct{}, error) { return struct{}{}, op() })
	return err
}
