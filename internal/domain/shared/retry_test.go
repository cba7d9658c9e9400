package shared

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryConflicts_SucceedsAfterConflict(t *testing.T) {
	calls := 0
	err := RetryConflicts(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return NewDomainError("ACTIVATION_CONFLICT", "lost the race", ErrConcurrencyConflict)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryConflicts_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := RetryConflicts(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return ErrConcurrencyConflict
	})
	assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	assert.Equal(t, 3, calls)
}

func TestRetryConflicts_DoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := RetryConflicts(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return ErrInvalidInput
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, 1, calls)
}

func TestRetryConflicts_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryConflicts(ctx, 3, 10*time.Millisecond, func() error {
		return ErrConcurrencyConflict
	})
	assert.True(t, errors.Is(err, context.Canceled))
}
