// Package retry implements the bounded retry policy used for Shopify Admin
// API reads: a fixed attempt budget, a backoff schedule, and a predicate
// deciding which errors are worth another attempt.
package retry

import (
	"context"
	"time"
)

type Policy struct {
	MaxAttempts int
	// Backoff returns the sleep before attempt n+1 (n is 1-based).
	Backoff func(attempt int) time.Duration
	// Retryable reports whether err should be retried. nil means retry all.
	Retryable func(err error) bool
}

// LinearBackoff sleeps unit, 2*unit, 3*unit, ...
func LinearBackoff(unit time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * unit
	}
}

// AdminAPIReads is the only retry policy in the system: 3 attempts with
// 1s/2s/3s backoff.
var AdminAPIReads = Policy{
	MaxAttempts: 3,
	Backoff:     LinearBackoff(time.Second),
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or ctx is
// done. The last error is returned; a context error preempts sleeping.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
