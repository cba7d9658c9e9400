package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) Activate(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[*subscription.Subscription], error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(shared.Paginated[*subscription.Subscription]), args.Error(1)
}

func (m *mockSubscriptionRepository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

type mockTierRepository struct {
	mock.Mock
}

func (m *mockTierRepository) Save(ctx context.Context, tier *catalog.Tier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *mockTierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tier), args.Error(1)
}

func (m *mockTierRepository) FindByCode(ctx context.Context, code string) (*catalog.Tier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tier), args.Error(1)
}

func (m *mockTierRepository) List(ctx context.Context, onlyActive bool) ([]*catalog.Tier, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Tier), args.Error(1)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Save(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *mockSessionRepository) Touch(ctx context.Context, id uuid.UUID, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *mockSessionRepository) CountActive(ctx context.Context, scope session.Scope, organizationID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, scope, organizationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepository) ListActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*session.Session, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *mockSessionRepository) RevokeOldestActive(ctx context.Context, scope session.Scope, organizationID, userID uuid.UUID, reason session.RevokeReason, now time.Time) (*session.Session, error) {
	args := m.Called(ctx, scope, organizationID, userID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *mockSessionRepository) RevokeAllByOrganization(ctx context.Context, organizationID uuid.UUID, reason session.RevokeReason, now time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, organizationID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

func (m *mockSessionRepository) RevokeIdle(ctx context.Context, cutoff time.Time, now time.Time) ([]*session.Session, error) {
	args := m.Called(ctx, cutoff, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

type mockVoucherRepository struct {
	mock.Mock
}

func (m *mockVoucherRepository) Save(ctx context.Context, voucher *subscription.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *mockVoucherRepository) FindByCode(ctx context.Context, code string) (*subscription.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Voucher), args.Error(1)
}

func (m *mockVoucherRepository) ConsumeUse(ctx context.Context, voucherID uuid.UUID) error {
	args := m.Called(ctx, voucherID)
	return args.Error(0)
}

func (m *mockVoucherRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*subscription.Voucher], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*subscription.Voucher]), args.Error(1)
}

type mockRedeemer struct {
	mock.Mock

	// returnMinted makes Redeem hand back whatever the Run hook
	// stashed in minted, mirroring the real redeemer returning the
	// subscription its mint callback built.
	returnMinted bool
	minted       *subscription.Subscription
}

func (m *mockRedeemer) Redeem(ctx context.Context, code string, organizationID uuid.UUID, oncePerOrganization bool, mint subscription.MintFunc) (*subscription.Subscription, error) {
	args := m.Called(ctx, code, organizationID, oncePerOrganization, mint)
	if m.returnMinted {
		return m.minted, args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}
