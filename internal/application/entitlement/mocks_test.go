package entitlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/metering"
	"github.com/compliport/backend/internal/domain/subscription"
)

type mockFeatureRepository struct {
	mock.Mock
}

func (m *mockFeatureRepository) Save(ctx context.Context, feature *catalog.Feature) error {
	args := m.Called(ctx, feature)
	return args.Error(0)
}

func (m *mockFeatureRepository) FindByKey(ctx context.Context, key string) (*catalog.Feature, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Feature), args.Error(1)
}

func (m *mockFeatureRepository) List(ctx context.Context) ([]*catalog.Feature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Feature), args.Error(1)
}

type mockTierFeatureRepository struct {
	mock.Mock
}

func (m *mockTierFeatureRepository) Save(ctx context.Context, entry *catalog.TierFeature) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockTierFeatureRepository) FindByTierAndFeature(ctx context.Context, tierID uuid.UUID, featureKey string) (*catalog.TierFeature, error) {
	args := m.Called(ctx, tierID, featureKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TierFeature), args.Error(1)
}

func (m *mockTierFeatureRepository) FindByTier(ctx context.Context, tierID uuid.UUID) ([]*catalog.TierFeature, error) {
	args := m.Called(ctx, tierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.TierFeature), args.Error(1)
}

type mockMeterRepository struct {
	mock.Mock
}

func (m *mockMeterRepository) TryConsume(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period metering.Period, amount int64, limit *int64) (int64, error) {
	args := m.Called(ctx, subscriptionID, featureKey, period, amount, limit)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMeterRepository) CurrentCount(ctx context.Context, subscriptionID uuid.UUID, featureKey string, period metering.Period) (int64, error) {
	args := m.Called(ctx, subscriptionID, featureKey, period)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMeterRepository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID, period metering.Period) ([]*metering.UsageCounter, error) {
	args := m.Called(ctx, subscriptionID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*metering.UsageCounter), args.Error(1)
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
