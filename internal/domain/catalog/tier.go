package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/compliport/backend/internal/domain/shared"
)

// ResourceCaps are the hard resource ceilings a tier sells. Zero
// means uncapped.
type ResourceCaps struct {
	MaxUsers              int `gorm:"not null;default:0" json:"max_users"`
	MaxDocuments          int `gorm:"not null;default:0" json:"max_documents"`
	MaxStorageMB          int `gorm:"not null;default:0" json:"max_storage_mb"`
	MaxConcurrentSessions int `gorm:"not null;default:0" json:"max_concurrent_sessions"`
}

// Valid checks that no cap is negative
func (c ResourceCaps) Valid() bool {
	return c.MaxUsers >= 0 && c.MaxDocuments >= 0 && c.MaxStorageMB >= 0 && c.MaxConcurrentSessions >= 0
}

// Tier is a sellable plan level in the entitlement catalog.
type Tier struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"uniqueIndex;size:50;not null" json:"code"`
	DisplayName  string          `gorm:"size:100;not null" json:"display_name"`
	Description  string          `gorm:"size:500" json:"description"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"monthly_price"`
	YearlyPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"yearly_price"`
	Currency     string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Rank         int             `gorm:"not null;default:0" json:"rank"`
	Caps         ResourceCaps    `gorm:"embedded" json:"caps"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
}

// NewTier creates a new catalog tier
func NewTier(code, displayName string, monthlyPrice decimal.Decimal, rank int, caps ResourceCaps) (*Tier, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TIER_CODE", "tier code cannot be empty", shared.ErrInvalidInput)
	}
	if displayName == "" {
		return nil, shared.NewDomainError("INVALID_TIER_NAME", "tier display name cannot be empty", shared.ErrInvalidInput)
	}
	if monthlyPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TIER_PRICE", "tier price cannot be negative", shared.ErrInvalidInput)
	}
	if !caps.Valid() {
		return nil, shared.NewDomainError("INVALID_TIER_CAPS", "tier resource caps cannot be negative", shared.ErrInvalidInput)
	}
	return &Tier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		DisplayName:       displayName,
		MonthlyPrice:      monthlyPrice,
		Currency:          "USD",
		Rank:              rank,
		Caps:              caps,
		IsActive:          true,
	}, nil
}

// Deactivate retires the tier from sale; existing subscriptions keep it
func (t *Tier) Deactivate() {
	t.IsActive = false
	t.MarkUpdated()
}

// Activate makes the tier sellable again
func (t *Tier) Activate() {
	t.IsActive = true
	t.MarkUpdated()
}

// UpdatePrice changes the monthly price of the tier
func (t *Tier) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_TIER_PRICE", "tier price cannot be negative", shared.ErrInvalidInput)
	}
	t.MonthlyPrice = price
	t.MarkUpdated()
	return nil
}

// UpdateYearlyPrice changes the yearly price of the tier
func (t *Tier) UpdateYearlyPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_TIER_PRICE", "tier price cannot be negative", shared.ErrInvalidInput)
	}
	t.YearlyPrice = price
	t.MarkUpdated()
	return nil
}

// IsFree reports whether the tier has a zero price
func (t *Tier) IsFree() bool {
	return t.MonthlyPrice.IsZero()
}

// TableName returns the table name for GORM
func (Tier) TableName() string {
	return "tiers"
}
