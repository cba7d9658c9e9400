package subscription

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compliport/backend/internal/domain/shared"
)

// Voucher is a sponsor-funded discount code redeemable for a tier.
// Each organization may redeem a given voucher at most once, and the
// voucher as a whole carries a global redemption budget.
type Voucher struct {
	shared.BaseAggregateRoot
	Code            string          `gorm:"uniqueIndex;size:50;not null" json:"code"`
	TierID          uuid.UUID       `gorm:"type:uuid;not null" json:"tier_id"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
	SponsorName     string          `gorm:"size:100" json:"sponsor_name"`
	ValidFrom       time.Time       `gorm:"not null" json:"valid_from"`
	ValidUntil      time.Time       `gorm:"not null" json:"valid_until"`
	MaxUses         int             `gorm:"not null" json:"max_uses"`
	CurrentUses     int             `gorm:"not null;default:0" json:"current_uses"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
}

// NewVoucher creates a new voucher for a tier
func NewVoucher(code string, tierID uuid.UUID, discountPercent decimal.Decimal, sponsorName string, validFrom, validUntil time.Time, maxUses int) (*Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_CODE", "voucher code cannot be empty", shared.ErrInvalidInput)
	}
	if tierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TIER_ID", "tier ID cannot be empty", shared.ErrInvalidInput)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "discount percent must be between 0 and 100", shared.ErrInvalidInput)
	}
	if !validUntil.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_VALIDITY_WINDOW", "voucher validity window must end after it starts", shared.ErrInvalidInput)
	}
	if maxUses <= 0 {
		return nil, shared.NewDomainError("INVALID_MAX_USES", "voucher max uses must be positive", shared.ErrInvalidInput)
	}
	return &Voucher{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		TierID:            tierID,
		DiscountPercent:   discountPercent,
		SponsorName:       sponsorName,
		ValidFrom:         validFrom,
		ValidUntil:        validUntil,
		MaxUses:           maxUses,
		IsActive:          true,
	}, nil
}

// Validate checks whether the voucher can be redeemed at the given instant
func (v *Voucher) Validate(now time.Time) error {
	if !v.IsActive {
		return shared.NewDomainError("VOUCHER_INACTIVE", "voucher has been deactivated", shared.ErrInvalidState)
	}
	if now.Before(v.ValidFrom) || now.After(v.ValidUntil) {
		return shared.NewDomainError("VOUCHER_EXPIRED", "voucher is outside its validity window", shared.ErrInvalidState)
	}
	if v.CurrentUses >= v.MaxUses {
		return shared.NewDomainError("VOUCHER_EXHAUSTED", "voucher has no redemptions left", shared.ErrInvalidState)
	}
	return nil
}

// DiscountedPrice applies the voucher discount to a tier price
func (v *Voucher) DiscountedPrice(price decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(100).Sub(v.DiscountPercent).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}

// RemainingUses returns how many redemptions are left
func (v *Voucher) RemainingUses() int {
	remaining := v.MaxUses - v.CurrentUses
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Deactivate withdraws the voucher before its window closes
func (v *Voucher) Deactivate() {
	v.IsActive = false
	v.MarkUpdated()
}

// TableName returns the table name for GORM
func (Voucher) TableName() string {
	return "vouchers"
}
