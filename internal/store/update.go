package store

import (
	"context"
	"time"

	"github.com/khrees2412/levelup/internal/common"
	"github.com/khrees2412/levelup/internal/delay"
	"github.com/khrees2412/levelup/internal/logger"
)

// Mutator computes the next value of an entry from its current bytes.
// Returning nil bytes and a nil error leaves the entry untouched.
type Mutator func(current []byte, present bool) ([]byte, error)

// DefaultRetry is the back-off used when concurrent writers collide.
func DefaultRetry(l *logger.Logger) delay.Retry {
	return delay.Retry{
		MaxAttempts: 10,
		Backoff:     delay.Exponential{Base: 5 * time.Millisecond, Max: 200 * time.Millisecond},
		Logger:      l,
	}
}

// Update performs a read-modify-write of key that never silently drops a
// concurrent write: the result is published with CompareAndSwap and the
// whole cycle is retried when the entry changed underneath.
func Update(ctx context.Context, s Store, retry delay.Retry, key string, mutate Mutator) error {
	if retry.Retryable == nil {
		retry.Retryable = IsConflict
	}

	return retry.Do(ctx, "update "+key, func() error {
		current, present, err := s.Get(ctx, key)
		if err != nil {
			return err
		}

		next, err := mutate(current, present)
		if err != nil || next == nil {
			return err
		}

		var old []byte
		if present {
			old = current
			if old == nil {
				old = []byte{}
			}
		}

		swapped, err := s.CompareAndSwap(ctx, key, old, next)
		if err != nil {
			return err
		}
		if !swapped {
			return common.NewError(common.CodeConflict, key+" changed concurrently", nil)
		}
		return nil
	})
}

// IsConflict reports whether err is a lost compare-and-swap race.
func IsConflict(err error) bool {
	return common.Is(err, common.CodeConflict)
}
