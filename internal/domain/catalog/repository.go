package catalog

import (
	"context"

	"github.com/google/uuid"
)

// TierRepository defines the persistence interface for tiers
type TierRepository interface {
	Save(ctx context.Context, tier *Tier) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tier, error)
	FindByCode(ctx context.Context, code string) (*Tier, error)
	List(ctx context.Context, onlyActive bool) ([]*Tier, error)
}

// FeatureRepository defines the persistence interface for features
type FeatureRepository interface {
	Save(ctx context.Context, feature *Feature) error
	FindByKey(ctx context.Context, key string) (*Feature, error)
	List(ctx context.Context) ([]*Feature, error)
}

// TierFeatureRepository defines the persistence interface for the entitlement matrix
type TierFeatureRepository interface {
	Save(ctx context.Context, entry *TierFeature) error
	FindByTierAndFeature(ctx context.Context, tierID uuid.UUID, featureKey string) (*TierFeature, error)
	FindByTier(ctx context.Context, tierID uuid.UUID) ([]*TierFeature, error)
}
