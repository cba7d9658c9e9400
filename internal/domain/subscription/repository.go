package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/compliport/backend/internal/domain/shared"
)

// Repository defines the persistence interface for subscriptions.
//
// Activate must atomically supersede the organization's current
// active subscription, if any, and insert the new one; it returns the
// superseded subscription. Two concurrent activations for the same
// organization must never both leave an active row.
type Repository interface {
	Save(ctx context.Context, sub *Subscription) error
	Activate(ctx context.Context, sub *Subscription) (*Subscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) (*Subscription, error)
	ListByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[*Subscription], error)
	// FindDueForExpiry returns active subscriptions whose end date has passed.
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*Subscription, error)
}

// VoucherRepository defines the persistence interface for vouchers.
// ConsumeUse must increment the use counter atomically and fail with
// a concurrency conflict when the voucher budget is already spent.
type VoucherRepository interface {
	Save(ctx context.Context, voucher *Voucher) error
	FindByCode(ctx context.Context, code string) (*Voucher, error)
	ConsumeUse(ctx context.Context, voucherID uuid.UUID) error
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Voucher], error)
}

// MintFunc builds the subscription a successful redemption activates.
// It must be side-effect free; the redeemer persists the result.
type MintFunc func(v *Voucher) (*Subscription, error)

// Redeemer executes the voucher redemption sequence as one atomic
// unit: validate the voucher, claim one use, record the redemption,
// and activate the minted subscription. Any failure leaves the
// voucher budget and the ledger untouched.
type Redeemer interface {
	Redeem(ctx context.Context, code string, organizationID uuid.UUID, oncePerOrganization bool, mint MintFunc) (*Subscription, error)
}

// RedemptionRepository defines the persistence interface for redemption records
type RedemptionRepository interface {
	Save(ctx context.Context, redemption *Redemption) error
	FindByVoucherAndOrganization(ctx context.Context, voucherID, organizationID uuid.UUID) (*Redemption, error)
	ListByVoucher(ctx context.Context, voucherID uuid.UUID) ([]*Redemption, error)
}
