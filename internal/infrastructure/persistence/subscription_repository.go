package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

// GormSubscriptionRepository implements subscription.Repository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Save persists a subscription. The unique index on
// (organization_id, is_active) turns a second concurrent activation
// into a concurrency conflict instead of a second active row.
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("SUBSCRIPTION_EXISTS", "organization already has an active subscription", shared.ErrConcurrencyConflict)
		}
		return err
	}
	return nil
}

// Activate inserts a new active subscription, superseding whatever
// subscription was active for the organization. The supersede is a
// set-based guarded update and the insert is covered by the unique
// index, so of two concurrent activations exactly one wins; the loser
// surfaces a concurrency conflict for the caller to retry.
func (r *GormSubscriptionRepository) Activate(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	var prior *subscription.Subscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		prior, txErr = activateTx(tx, sub)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return prior, nil
}

// activateTx supersedes the organization's active subscription and
// inserts the new one inside the caller's transaction
func activateTx(tx *gorm.DB, sub *subscription.Subscription) (*subscription.Subscription, error) {
	now := time.Now()
	var prior *subscription.Subscription

	var existing subscription.Subscription
	err := tx.
		Where("organization_id = ? AND status = ?", sub.OrganizationID, subscription.StatusActive).
		First(&existing).Error
	switch {
	case err == nil:
		result := tx.Model(&subscription.Subscription{}).
			Where("id = ? AND status = ?", existing.ID, subscription.StatusActive).
			Updates(map[string]any{
				"status":     subscription.StatusSuperseded,
				"expires_at": now,
				"is_active":  nil,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, shared.NewDomainError("ACTIVATION_CONFLICT", "another activation superseded the subscription first", shared.ErrConcurrencyConflict)
		}
		existing.Supersede(now)
		prior = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		// nothing to supersede
	default:
		return nil, err
	}

	if err := tx.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, shared.NewDomainError("ACTIVATION_CONFLICT", "another activation won the race for this organization", shared.ErrConcurrencyConflict)
		}
		return nil, err
	}
	return prior, nil
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindActiveByOrganization returns the single active subscription of
// an organization, or shared.ErrNotFound when there is none
func (r *GormSubscriptionRepository) FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationID, subscription.StatusActive).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// ListByOrganization returns the subscription history of an organization
func (r *GormSubscriptionRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[*subscription.Subscription], error) {
	var subs []*subscription.Subscription
	var total int64

	query := r.db.WithContext(ctx).
		Model(&subscription.Subscription{}).
		Where("organization_id = ?", organizationID)

	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*subscription.Subscription]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SubscriptionSortFields, "started_at")
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&subs).Error; err != nil {
		return shared.Paginated[*subscription.Subscription]{}, err
	}

	return shared.NewPaginated(subs, total, filter.Page, filter.PageSize), nil
}

// FindDueForExpiry returns active subscriptions whose end date has passed
func (r *GormSubscriptionRepository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", subscription.StatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
