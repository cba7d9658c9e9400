package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/domain/subscription"
)

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

type mockSubscriptionResolver struct {
	mock.Mock
}

func (m *mockSubscriptionResolver) ActiveSubscription(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}
