package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/compliport/backend/internal/domain/shared"
)

// Redemption records one organization redeeming one voucher. The
// unique index on (voucher_id, organization_id) makes redemption
// exactly-once per organization even under concurrent requests.
type Redemption struct {
	shared.BaseEntity
	VoucherID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_voucher_org" json:"voucher_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_voucher_org" json:"organization_id"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null" json:"subscription_id"`
	RedeemedAt     time.Time `gorm:"not null" json:"redeemed_at"`
}

// NewRedemption creates a redemption record
func NewRedemption(voucherID, organizationID, subscriptionID uuid.UUID) (*Redemption, error) {
	if voucherID == uuid.Nil || organizationID == uuid.Nil || subscriptionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REDEMPTION", "redemption references cannot be empty", shared.ErrInvalidInput)
	}
	return &Redemption{
		BaseEntity:     shared.NewBaseEntity(),
		VoucherID:      voucherID,
		OrganizationID: organizationID,
		SubscriptionID: subscriptionID,
		RedeemedAt:     time.Now(),
	}, nil
}

// TableName returns the table name for GORM
func (Redemption) TableName() string {
	return "voucher_redemptions"
}
