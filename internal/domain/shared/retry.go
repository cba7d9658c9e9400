package shared

import (
	"context"
	"errors"
	"time"
)

// RetryConflicts runs fn up to attempts times, retrying only when it
// fails with ErrConcurrencyConflict. The pause between attempts stays
// in the tens-of-milliseconds range; any other error, or exhausting
// the attempts, surfaces immediately.
func RetryConflicts(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
