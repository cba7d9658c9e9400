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

// GormVoucherRedeemer implements subscription.Redeemer. The whole
// redemption runs in one transaction so a failed step rolls back the
// use-counter claim with it.
type GormVoucherRedeemer struct {
	db *gorm.DB
}

// NewGormVoucherRedeemer creates a new GormVoucherRedeemer
func NewGormVoucherRedeemer(db *gorm.DB) *GormVoucherRedeemer {
	return &GormVoucherRedeemer{db: db}
}

// Redeem atomically validates the voucher, claims one use, activates
// the minted subscription, and appends the redemption record. The
// use-counter claim is a guarded update, so of K concurrent
// redemptions of a voucher with one use left exactly one succeeds.
func (r *GormVoucherRedeemer) Redeem(ctx context.Context, code string, organizationID uuid.UUID, oncePerOrganization bool, mint subscription.MintFunc) (*subscription.Subscription, error) {
	now := time.Now()
	var minted *subscription.Subscription

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var voucher subscription.Voucher
		if err := tx.First(&voucher, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewDomainError("VOUCHER_NOT_FOUND", "voucher code does not exist", shared.ErrNotFound)
			}
			return err
		}

		if err := voucher.Validate(now); err != nil {
			return err
		}

		if oncePerOrganization {
			var count int64
			if err := tx.Model(&subscription.Redemption{}).
				Where("voucher_id = ? AND organization_id = ?", voucher.ID, organizationID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.NewDomainError("VOUCHER_ALREADY_REDEEMED", "organization has already redeemed this voucher", shared.ErrAlreadyExists)
			}
		}

		// Claim one use. Losers of the race see zero rows and are
		// rejected as exhausted, never past max_uses.
		result := tx.Model(&subscription.Voucher{}).
			Where("id = ? AND is_active = ? AND current_uses < max_uses", voucher.ID, true).
			UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("VOUCHER_EXHAUSTED", "voucher has no redemptions left", shared.ErrInvalidState)
		}

		sub, err := mint(&voucher)
		if err != nil {
			return err
		}
		if _, err := activateTx(tx, sub); err != nil {
			return err
		}

		redemption, err := subscription.NewRedemption(voucher.ID, organizationID, sub.ID)
		if err != nil {
			return err
		}
		if err := tx.Create(redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError("VOUCHER_ALREADY_REDEEMED", "organization has already redeemed this voucher", shared.ErrAlreadyExists)
			}
			return err
		}

		minted = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}
