package catalog

import (
	"github.com/google/uuid"

	"github.com/compliport/backend/internal/domain/shared"
)

// TierFeature is one cell of the entitlement matrix: what a tier
// grants for a given feature. A nil Limit means unlimited.
type TierFeature struct {
	shared.BaseEntity
	TierID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tier_feature" json:"tier_id"`
	FeatureKey string    `gorm:"size:100;not null;uniqueIndex:idx_tier_feature" json:"feature_key"`
	Enabled    bool      `gorm:"not null;default:false" json:"enabled"`
	Limit      *int64    `gorm:"column:usage_limit" json:"limit"`
}

// NewTierFeature creates a new entitlement matrix entry
func NewTierFeature(tierID uuid.UUID, featureKey string, enabled bool, limit *int64) (*TierFeature, error) {
	if tierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TIER_ID", "tier ID cannot be empty", shared.ErrInvalidInput)
	}
	if featureKey == "" {
		return nil, shared.NewDomainError("INVALID_FEATURE_KEY", "feature key cannot be empty", shared.ErrInvalidInput)
	}
	if limit != nil && *limit < 0 {
		return nil, shared.NewDomainError("INVALID_FEATURE_LIMIT", "feature limit cannot be negative", shared.ErrInvalidInput)
	}
	return &TierFeature{
		BaseEntity: shared.NewBaseEntity(),
		TierID:     tierID,
		FeatureKey: featureKey,
		Enabled:    enabled,
		Limit:      limit,
	}, nil
}

// Capability converts the matrix entry into a lookup result
func (tf *TierFeature) Capability() Capability {
	return Capability{
		FeatureKey: tf.FeatureKey,
		Enabled:    tf.Enabled,
		Limit:      tf.Limit,
	}
}

// TableName returns the table name for GORM
func (TierFeature) TableName() string {
	return "tier_features"
}

// Capability is the answer to "what does this tier grant for this
// feature". A disabled capability carries no limit; a nil Limit on an
// enabled capability means unlimited.
type Capability struct {
	FeatureKey string `json:"feature_key"`
	Enabled    bool   `json:"enabled"`
	Limit      *int64 `json:"limit,omitempty"`
}

// Unlimited reports whether the capability has no quota ceiling
func (c Capability) Unlimited() bool {
	return c.Enabled && c.Limit == nil
}

// DisabledCapability returns the capability of a feature a tier does not grant
func DisabledCapability(featureKey string) Capability {
	return Capability{FeatureKey: featureKey, Enabled: false}
}
