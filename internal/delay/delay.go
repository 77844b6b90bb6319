// Package delay provides the wait strategies used for simulated latency and
// for back-off between retried store operations.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/khrees2412/levelup/internal/logger"
)

// Strategy returns how long to wait before the given attempt (1-based).
type Strategy interface {
	Next(attempt int) time.Duration
}

// Fixed waits the same duration every time.
type Fixed time.Duration

func (f Fixed) Next(int) time.Duration {
	return time.Duration(f)
}

// Exponential doubles Base on every attempt, capped at Max when Max > 0.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

func (e Exponential) Next(attempt int) time.Duration {
	d := e.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if e.Max > 0 && d >= e.Max {
			return e.Max
		}
	}
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// Wait blocks for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry holds the parameters for a retried operation.
type Retry struct {
	MaxAttempts int
	Backoff     Strategy
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool
	Logger    *logger.Logger
}

// Do executes fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is cancelled.
func (r Retry) Do(ctx context.Context, operation string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := r.Backoff
	if backoff == nil {
		backoff = Fixed(0)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := backoff.Next(attempt)
		r.Logger.Debug("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
			operation, attempt, attempts, lastErr, wait)
		if err := Wait(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, lastErr)
}
