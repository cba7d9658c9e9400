package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/compliport/backend/internal/domain/metering"
	"github.com/compliport/backend/internal/domain/shared"
)

// GormUsageCounterRepository implements metering.Repository using GORM
type GormUsageCounterRepository struct {
	db *gorm.DB
}

// NewGormUsageCounterRepository creates a new GormUsageCounterRepository
func NewGormUsageCounterRepository(db *gorm.DB) *GormUsageCounterRepository {
	return &GormUsageCounterRepository{db: db}
}

// TryConsume atomically adds amount to the counter for
// (subscription, feature, period) if the result stays within limit.
// A guarded single-row UPDATE carries the limit check, so two
// concurrent consumers can never both land past the quota.
func (r *GormUsageCounterRepository) TryConsume(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period metering.Period, amount int64, limit *int64) (int64, error) {
	if amount <= 0 {
		return 0, shared.NewDomainError("INVALID_AMOUNT", "consume amount must be positive", shared.ErrInvalidInput)
	}

	// Ensure the counter row exists; first consumer in a period creates it.
	counter, err := metering.NewUsageCounter(subscriptionID, featureKey, period)
	if err != nil {
		return 0, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "feature_key"}, {Name: "period_key"}},
			DoNothing: true,
		}).
		Create(counter).Error; err != nil {
		return 0, err
	}

	query := r.db.WithContext(ctx).
		Model(&metering.UsageCounter{}).
		Where("subscription_id = ? AND feature_key = ? AND period_key = ?", subscriptionID, featureKey, period.Key())
	if limit != nil {
		query = query.Where("count + ? <= ?", amount, *limit)
	}
	result := query.UpdateColumn("count", gorm.Expr("count + ?", amount))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.CurrentCount(ctx, subscriptionID, featureKey, period)
		if err != nil {
			return 0, err
		}
		return current, shared.NewDomainError("QUOTA_EXCEEDED", "usage quota exceeded for the current period", shared.ErrQuotaExceeded)
	}

	return r.CurrentCount(ctx, subscriptionID, featureKey, period)
}

// CurrentCount returns the consumed amount for the period, zero when
// the counter was never touched
func (r *GormUsageCounterRepository) CurrentCount(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period metering.Period) (int64, error) {
	var counter metering.UsageCounter
	err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND feature_key = ? AND period_key = ?", subscriptionID, featureKey, period.Key()).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Count, nil
}

// ListBySubscription returns all counters of a subscription in a period
func (r *GormUsageCounterRepository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID, period metering.Period) ([]*metering.UsageCounter, error) {
	var counters []*metering.UsageCounter
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND period_key = ?", subscriptionID, period.Key()).
		Order("feature_key ASC").
		Find(&counters).Error; err != nil {
		return nil, err
	}
	return counters, nil
}
