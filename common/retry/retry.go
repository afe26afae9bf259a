// Package retry provides the bounded exponential-backoff policy applied to
// every outbound service call. One policy value per client, tuned at
// construction, instead of ad-hoc loops at call sites.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Policy describes how an operation is retried. The zero value retries
// nothing; use a constructor-provided policy or Default().
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay added at random, in
	// [0,1]. Keeps concurrent clients from retrying in lockstep.
	Jitter float64
	// Retryable decides whether an error is transient. nil means nothing
	// is retryable.
	Retryable func(error) bool
}

// Default mirrors the upstream services' tolerance: five attempts with
// exponential backoff from 2s capped at 10s.
func Default(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Jitter:      0.2,
		Retryable:   retryable,
	}
}

// Do runs op until it succeeds, the policy is exhausted, the error is not
// retryable, or ctx ends. Context cancellation is never retried.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
		if attempt == attempts || p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d < 0 {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}
