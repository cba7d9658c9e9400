package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

// GormVoucherRepository implements subscription.VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// Save persists a voucher
func (r *GormVoucherRepository) Save(ctx context.Context, voucher *subscription.Voucher) error {
	if err := r.db.WithContext(ctx).Save(voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("VOUCHER_EXISTS", "a voucher with this code already exists", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByCode finds a voucher by its code
func (r *GormVoucherRepository) FindByCode(ctx context.Context, code string) (*subscription.Voucher, error) {
	var voucher subscription.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &voucher, nil
}

// ConsumeUse spends one unit of the voucher budget. The guarded
// update only matches while uses remain, so concurrent redeemers past
// the budget see zero rows affected and get a conflict error.
func (r *GormVoucherRepository) ConsumeUse(ctx context.Context, voucherID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&subscription.Voucher{}).
		Where("id = ? AND is_active = ? AND current_uses < max_uses", voucherID, true).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("VOUCHER_EXHAUSTED", "voucher has no redemptions left", shared.ErrConcurrencyConflict)
	}
	return nil
}

// List returns vouchers page by page
func (r *GormVoucherRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*subscription.Voucher], error) {
	var vouchers []*subscription.Voucher
	var total int64

	query := r.db.WithContext(ctx).Model(&subscription.Voucher{})
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*subscription.Voucher]{}, err
	}

	orderBy := ValidateSortField(filter.OrderBy, VoucherSortFields, "created_at")
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&vouchers).Error; err != nil {
		return shared.Paginated[*subscription.Voucher]{}, err
	}

	return shared.NewPaginated(vouchers, total, filter.Page, filter.PageSize), nil
}

// GormRedemptionRepository implements subscription.RedemptionRepository using GORM
type GormRedemptionRepository struct {
	db *gorm.DB
}

// NewGormRedemptionRepository creates a new GormRedemptionRepository
func NewGormRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

// Save records a redemption. The unique index on
// (voucher_id, organization_id) rejects a second redemption by the
// same organization.
func (r *GormRedemptionRepository) Save(ctx context.Context, redemption *subscription.Redemption) error {
	if err := r.db.WithContext(ctx).Create(redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("VOUCHER_ALREADY_REDEEMED", "organization has already redeemed this voucher", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByVoucherAndOrganization finds a redemption record
func (r *GormRedemptionRepository) FindByVoucherAndOrganization(ctx context.Context, voucherID, organizationID uuid.UUID) (*subscription.Redemption, error) {
	var redemption subscription.Redemption
	if err := r.db.WithContext(ctx).
		Where("voucher_id = ? AND organization_id = ?", voucherID, organizationID).
		First(&redemption).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &redemption, nil
}

// ListByVoucher returns all redemptions of a voucher
func (r *GormRedemptionRepository) ListByVoucher(ctx context.Context, voucherID uuid.UUID) ([]*subscription.Redemption, error) {
	var redemptions []*subscription.Redemption
	if err := r.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		Order("redeemed_at ASC").
		Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}
