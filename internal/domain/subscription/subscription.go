package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/compliport/backend/internal/domain/shared"
)

// Status is the lifecycle state of a subscription
type Status string

const (
	// StatusActive means the subscription currently grants entitlements
	StatusActive Status = "active"
	// StatusCancelled means the subscription was ended by the organization
	StatusCancelled Status = "cancelled"
	// StatusExpired means the subscription ran past its end date
	StatusExpired Status = "expired"
	// StatusSuperseded means a newer subscription replaced this one
	StatusSuperseded Status = "superseded"
)

// IsTerminal reports whether the status can never grant entitlements again
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired || s == StatusSuperseded
}

// PaymentStatus tracks the billing state of a subscription
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Subscription binds an organization to a tier for a period of time.
// At most one subscription per organization may be active. A nil
// ExpiresAt means the subscription is open-ended.
type Subscription struct {
	shared.BaseAggregateRoot
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_one_active_per_org" json:"organization_id"`
	TierID         uuid.UUID       `gorm:"type:uuid;not null" json:"tier_id"`
	Status         Status          `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"size:20;not null" json:"payment_status"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	VoucherCode    string          `gorm:"size:50" json:"voucher_code,omitempty"`
	AutoRenew      bool            `gorm:"not null;default:false" json:"auto_renew"`
	StartedAt      time.Time       `gorm:"not null" json:"started_at"`
	ExpiresAt      *time.Time      `gorm:"index" json:"expires_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`

	// ActiveFlag backs the unique index enforcing one active
	// subscription per organization. It is true while Status is active
	// and NULL once terminal, so terminal rows never collide.
	ActiveFlag *bool `gorm:"column:is_active;uniqueIndex:idx_one_active_per_org" json:"-"`
}

// NewSubscription creates an active subscription for an organization.
// A nil expiresAt creates an open-ended subscription.
func NewSubscription(organizationID, tierID uuid.UUID, amountPaid decimal.Decimal, expiresAt *time.Time) (*Subscription, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_ID", "organization ID cannot be empty", shared.ErrInvalidInput)
	}
	if tierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TIER_ID", "tier ID cannot be empty", shared.ErrInvalidInput)
	}
	if amountPaid.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "amount paid cannot be negative", shared.ErrInvalidInput)
	}
	now := time.Now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, shared.NewDomainError("INVALID_EXPIRY", "subscription end must be in the future", shared.ErrInvalidInput)
	}
	active := true
	return &Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrganizationID:    organizationID,
		TierID:            tierID,
		Status:            StatusActive,
		PaymentStatus:     PaymentPending,
		AmountPaid:        amountPaid,
		StartedAt:         now,
		ExpiresAt:         expiresAt,
		ActiveFlag:        &active,
	}, nil
}

// IsActive reports whether the subscription grants entitlements at the given instant
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// Cancel ends the subscription early. Cancelling a terminal
// subscription is rejected; the ledger makes the operation idempotent
// by treating "no active subscription" as a no-op.
func (s *Subscription) Cancel(now time.Time) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("SUBSCRIPTION_NOT_ACTIVE", "subscription is not active", shared.ErrInvalidState)
	}
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.ExpiresAt = &now
	s.ActiveFlag = nil
	if s.PaymentStatus == PaymentPending {
		s.PaymentStatus = PaymentCancelled
	}
	s.IncrementVersion()
	s.MarkUpdated()
	return nil
}

// Expire transitions an active subscription past its end date to
// expired. Expiring an already-terminal subscription is a no-op.
func (s *Subscription) Expire(now time.Time) error {
	if s.Status.IsTerminal() {
		return nil
	}
	if s.ExpiresAt == nil || now.Before(*s.ExpiresAt) {
		return shared.NewDomainError("SUBSCRIPTION_NOT_DUE", "subscription has not reached its end date", shared.ErrInvalidState)
	}
	s.Status = StatusExpired
	s.ActiveFlag = nil
	s.IncrementVersion()
	s.MarkUpdated()
	return nil
}

// Supersede ends the subscription because a newer one was activated
// for the same organization. A terminal subscription is left alone.
func (s *Subscription) Supersede(now time.Time) {
	if s.Status.IsTerminal() {
		return
	}
	s.Status = StatusSuperseded
	s.ExpiresAt = &now
	s.ActiveFlag = nil
	s.IncrementVersion()
	s.MarkUpdated()
}

// MarkPaid records successful payment for the subscription
func (s *Subscription) MarkPaid() {
	s.PaymentStatus = PaymentPaid
	s.MarkUpdated()
}

// MarkPaymentFailed records a failed payment attempt
func (s *Subscription) MarkPaymentFailed() {
	s.PaymentStatus = PaymentFailed
	s.MarkUpdated()
}

// AttachVoucher records the voucher code the subscription was bought with
func (s *Subscription) AttachVoucher(code string) {
	s.VoucherCode = code
	s.MarkUpdated()
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}
