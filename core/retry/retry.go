package retry

import (
	"context"
	"errors"
	"time"
)

// Policy describes a bounded retry loop with a fixed delay between attempts.
// The zero value performs a single attempt with no delay.
type Policy struct {
	// Attempts is the total number of attempts, including the first one.
	Attempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// Default is the policy applied to provider fetches: three attempts with a
// short fixed backoff.
var Default = Policy{Attempts: 3, Delay: 2 * time.Second}

// permanentError wraps an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable. Do returns the wrapped error
// immediately instead of consuming further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, fn returns a
// Permanent error, or ctx is done. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
