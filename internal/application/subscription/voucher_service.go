package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

// VoucherPolicy holds the redemption policy switches that the
// business left open
type VoucherPolicy struct {
	// OncePerOrganization restricts each voucher to a single
	// redemption per organization.
	OncePerOrganization bool
}

// CreateVoucherInput carries the fields for minting a new voucher
type CreateVoucherInput struct {
	Code            string          `json:"code" validate:"required"`
	TierCode        string          `json:"tier_code" validate:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	SponsorName     string          `json:"sponsor_name"`
	ValidFrom       time.Time       `json:"valid_from"`
	ValidUntil      time.Time       `json:"valid_until"`
	MaxUses         int             `json:"max_uses" validate:"required,min=1"`
}

// VoucherService manages sponsor vouchers and their redemption
type VoucherService struct {
	vouchers subscription.VoucherRepository
	redeemer subscription.Redeemer
	tiers    catalog.TierRepository
	policy   VoucherPolicy
	term     time.Duration
	logger   *zap.Logger
}

// NewVoucherService creates a new voucher service
func NewVoucherService(
	vouchers subscription.VoucherRepository,
	redeemer subscription.Redeemer,
	tiers catalog.TierRepository,
	policy VoucherPolicy,
	term time.Duration,
	logger *zap.Logger,
) *VoucherService {
	return &VoucherService{
		vouchers: vouchers,
		redeemer: redeemer,
		tiers:    tiers,
		policy:   policy,
		term:     term,
		logger:   logger,
	}
}

// Create mints a new voucher for the given tier
func (s *VoucherService) Create(ctx context.Context, input CreateVoucherInput) (*subscription.Voucher, error) {
	tier, err := s.tiers.FindByCode(ctx, strings.ToLower(input.TierCode))
	if err != nil {
		return nil, err
	}

	voucher, err := subscription.NewVoucher(input.Code, tier.ID, input.DiscountPercent,
		input.SponsorName, input.ValidFrom, input.ValidUntil, input.MaxUses)
	if err != nil {
		return nil, err
	}
	if err := s.vouchers.Save(ctx, voucher); err != nil {
		return nil, err
	}

	s.logger.Info("voucher created",
		zap.String("code", voucher.Code),
		zap.String("tier", tier.Code),
		zap.Int("max_uses", voucher.MaxUses))
	return voucher, nil
}

// Redeem exchanges a voucher code for an active subscription on the
// voucher's tier, with the discount applied to the tier price. The
// whole exchange is atomic; concurrent redemptions past the voucher
// budget lose cleanly.
func (s *VoucherService) Redeem(ctx context.Context, code string, organizationID uuid.UUID) (*subscription.Subscription, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_CODE", "voucher code cannot be empty", shared.ErrInvalidInput)
	}

	mint := func(v *subscription.Voucher) (*subscription.Subscription, error) {
		tier, err := s.tiers.FindByID(ctx, v.TierID)
		if err != nil {
			return nil, err
		}

		price := v.DiscountedPrice(tier.MonthlyPrice)
		sub, err := subscription.NewSubscription(organizationID, tier.ID, price, s.termEnd())
		if err != nil {
			return nil, err
		}
		sub.AttachVoucher(v.Code)
		if price.IsZero() {
			sub.MarkPaid()
		}
		return sub, nil
	}

	var sub *subscription.Subscription
	err := shared.RetryConflicts(ctx, conflictRetries, conflictBackoff, func() error {
		var redeemErr error
		sub, redeemErr = s.redeemer.Redeem(ctx, code, organizationID, s.policy.OncePerOrganization, mint)
		return redeemErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("voucher redeemed",
		zap.String("code", code),
		zap.String("organization_id", organizationID.String()),
		zap.String("subscription_id", sub.ID.String()))
	return sub, nil
}

// Get looks up a voucher by its code
func (s *VoucherService) Get(ctx context.Context, code string) (*subscription.Voucher, error) {
	return s.vouchers.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// Deactivate withdraws a voucher from circulation
func (s *VoucherService) Deactivate(ctx context.Context, code string) error {
	voucher, err := s.vouchers.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return err
	}
	voucher.Deactivate()
	if err := s.vouchers.Save(ctx, voucher); err != nil {
		return err
	}
	s.logger.Info("voucher deactivated", zap.String("code", voucher.Code))
	return nil
}

// List returns vouchers page by page
func (s *VoucherService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*subscription.Voucher], error) {
	return s.vouchers.List(ctx, filter)
}

func (s *VoucherService) termEnd() *time.Time {
	if s.term <= 0 {
		return nil
	}
	end := time.Now().Add(s.term)
	return &end
}
