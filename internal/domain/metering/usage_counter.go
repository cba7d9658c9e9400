package metering

import (
	"github.com/google/uuid"

	"github.com/compliport/backend/internal/domain/shared"
)

// UsageCounter accumulates consumption of one metered feature by one
// subscription within one calendar-month period. The row is the unit
// of atomicity: all increments go through conditional updates in the
// repository, never through read-modify-write of this struct.
type UsageCounter struct {
	shared.BaseEntity
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_usage_key" json:"subscription_id"`
	FeatureKey     string    `gorm:"size:100;not null;uniqueIndex:idx_usage_key" json:"feature_key"`
	PeriodKey      string    `gorm:"size:7;not null;uniqueIndex:idx_usage_key" json:"period_key"`
	Count          int64     `gorm:"not null;default:0" json:"count"`
}

// NewUsageCounter creates a zero-valued counter for the given key
func NewUsageCounter(subscriptionID uuid.UUID, featureKey string, period Period) (*UsageCounter, error) {
	if subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBSCRIPTION_ID", "subscription ID cannot be empty", shared.ErrInvalidInput)
	}
	if featureKey == "" {
		return nil, shared.NewDomainError("INVALID_FEATURE_KEY", "feature key cannot be empty", shared.ErrInvalidInput)
	}
	return &UsageCounter{
		BaseEntity:     shared.NewBaseEntity(),
		SubscriptionID: subscriptionID,
		FeatureKey:     featureKey,
		PeriodKey:      period.Key(),
		Count:          0,
	}, nil
}

// Remaining returns how much quota is left under the given limit.
// A nil limit means unlimited, reported as -1.
func (c *UsageCounter) Remaining(limit *int64) int64 {
	if limit == nil {
		return -1
	}
	remaining := *limit - c.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TableName returns the table name for GORM
func (UsageCounter) TableName() string {
	return "usage_counters"
}
