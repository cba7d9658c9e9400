package catalog

import (
	"strings"

	"github.com/compliport/backend/internal/domain/shared"
)

// FeatureKind classifies how a feature is enforced
type FeatureKind string

const (
	// FeatureKindBoolean is a simple on/off capability
	FeatureKindBoolean FeatureKind = "boolean"
	// FeatureKindMetered is a capability with a per-period consumption quota
	FeatureKindMetered FeatureKind = "metered"
	// FeatureKindConcurrency is a capability limiting simultaneous holders
	FeatureKindConcurrency FeatureKind = "concurrency"
)

// IsValid checks if the feature kind is valid
func (k FeatureKind) IsValid() bool {
	switch k {
	case FeatureKindBoolean, FeatureKindMetered, FeatureKindConcurrency:
		return true
	}
	return false
}

// Feature is a named capability that tiers may grant. Module tags
// the application area the feature belongs to; Premium marks
// capabilities excluded from free tiers by convention.
type Feature struct {
	shared.BaseEntity
	Key         string      `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Description string      `gorm:"size:500" json:"description"`
	Module      string      `gorm:"size:50" json:"module"`
	Premium     bool        `gorm:"not null;default:false" json:"premium"`
	Kind        FeatureKind `gorm:"size:20;not null" json:"kind"`
}

// NewFeature creates a new feature definition
func NewFeature(key, description, module string, kind FeatureKind) (*Feature, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, shared.NewDomainError("INVALID_FEATURE_KEY", "feature key cannot be empty", shared.ErrInvalidInput)
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_FEATURE_KIND", "feature kind must be boolean, metered, or concurrency", shared.ErrInvalidInput)
	}
	return &Feature{
		BaseEntity:  shared.NewBaseEntity(),
		Key:         key,
		Description: description,
		Module:      module,
		Kind:        kind,
	}, nil
}

// MarkPremium flags the feature as a paid-tier capability
func (f *Feature) MarkPremium() {
	f.Premium = true
	f.MarkUpdated()
}

// TableName returns the table name for GORM
func (Feature) TableName() string {
	return "features"
}
