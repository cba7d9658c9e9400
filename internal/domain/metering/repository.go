package metering

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for usage counters.
//
// TryConsume is the atomic heart of the meter: it must increment the
// counter for (subscription, feature, period) by amount only if the
// result stays within limit, creating the counter row on first use.
// It returns the post-increment count on success and a quota-exceeded
// domain error, without changing the counter, when the increment
// would overshoot. A nil limit admits any amount. Two concurrent
// calls must never both succeed past the limit.
type Repository interface {
	TryConsume(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period Period, amount int64, limit *int64) (int64, error)
	CurrentCount(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period Period) (int64, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID, period Period) ([]*UsageCounter, error)
}
