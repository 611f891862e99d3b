package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure (network timeout, 5xx response,
// dropped connection) that [Backoff.Do] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a [RetryableError]. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff is an exponential retry policy.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Delay    time.Duration // wait before the second call
	MaxDelay time.Duration // cap on a single wait, zero for none
}

// DefaultBackoff returns the policy used by [NewClient].
func DefaultBackoff() Backoff {
	return Backoff{Attempts: DefaultAttempts, Delay: DefaultDelay, MaxDelay: DefaultMaxDelay}
}

// Wait returns the pause after the given failed attempt (0-based).
func (b Backoff) Wait(attempt int) time.Duration {
	d := b.Delay
	for range attempt {
		d *= 2
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			return b.MaxDelay
		}
	}
	if b.MaxDelay > 0 && d > b.MaxDelay {
		return b.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns an error that is not retryable, or
// the attempts run out. The last error is returned, or ctx.Err() when the
// context ends during a wait.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) || i == attempts-1 {
			break
		}

		timer := time.NewTimer(b.Wait(i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// Retry runs fn under a Backoff of the given attempts and initial delay,
// with no cap.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}
