package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/shared"
)

// GormTierRepository implements catalog.TierRepository using GORM
type GormTierRepository struct {
	db *gorm.DB
}

// NewGormTierRepository creates a new GormTierRepository
func NewGormTierRepository(db *gorm.DB) *GormTierRepository {
	return &GormTierRepository{db: db}
}

// Save persists a tier
func (r *GormTierRepository) Save(ctx context.Context, tier *catalog.Tier) error {
	if err := r.db.WithContext(ctx).Save(tier).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("TIER_EXISTS", "a tier with this code already exists", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByID finds a tier by its ID
func (r *GormTierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tier, error) {
	var tier catalog.Tier
	if err := r.db.WithContext(ctx).First(&tier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tier, nil
}

// FindByCode finds a tier by its unique code
func (r *GormTierRepository) FindByCode(ctx context.Context, code string) (*catalog.Tier, error) {
	var tier catalog.Tier
	if err := r.db.WithContext(ctx).First(&tier, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tier, nil
}

// List returns tiers ordered by rank
func (r *GormTierRepository) List(ctx context.Context, onlyActive bool) ([]*catalog.Tier, error) {
	query := r.db.WithContext(ctx).Order("rank ASC")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var tiers []*catalog.Tier
	if err := query.Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GormFeatureRepository implements catalog.FeatureRepository using GORM
type GormFeatureRepository struct {
	db *gorm.DB
}

// NewGormFeatureRepository creates a new GormFeatureRepository
func NewGormFeatureRepository(db *gorm.DB) *GormFeatureRepository {
	return &GormFeatureRepository{db: db}
}

// Save persists a feature definition
func (r *GormFeatureRepository) Save(ctx context.Context, feature *catalog.Feature) error {
	if err := r.db.WithContext(ctx).Save(feature).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.NewDomainError("FEATURE_EXISTS", "a feature with this key already exists", shared.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

// FindByKey finds a feature by its unique key
func (r *GormFeatureRepository) FindByKey(ctx context.Context, key string) (*catalog.Feature, error) {
	var feature catalog.Feature
	if err := r.db.WithContext(ctx).First(&feature, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &feature, nil
}

// List returns all feature definitions ordered by key
func (r *GormFeatureRepository) List(ctx context.Context) ([]*catalog.Feature, error) {
	var features []*catalog.Feature
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&features).Error; err != nil {
		return nil, err
	}
	return features, nil
}

// GormTierFeatureRepository implements catalog.TierFeatureRepository using GORM
type GormTierFeatureRepository struct {
	db *gorm.DB
}

// NewGormTierFeatureRepository creates a new GormTierFeatureRepository
func NewGormTierFeatureRepository(db *gorm.DB) *GormTierFeatureRepository {
	return &GormTierFeatureRepository{db: db}
}

// Save persists an entitlement matrix entry, replacing any existing
// entry for the same tier and feature
func (r *GormTierFeatureRepository) Save(ctx context.Context, entry *catalog.TierFeature) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier_id"}, {Name: "feature_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled", "usage_limit", "updated_at"}),
		}).
		Create(entry).Error
}

// FindByTierAndFeature finds the matrix entry for a tier and feature
func (r *GormTierFeatureRepository) FindByTierAndFeature(ctx context.Context, tierID uuid.UUID, featureKey string) (*catalog.TierFeature, error) {
	var entry catalog.TierFeature
	if err := r.db.WithContext(ctx).
		Where("tier_id = ? AND feature_key = ?", tierID, featureKey).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByTier returns all matrix entries for a tier
func (r *GormTierFeatureRepository) FindByTier(ctx context.Context, tierID uuid.UUID) ([]*catalog.TierFeature, error) {
	var entries []*catalog.TierFeature
	if err := r.db.WithContext(ctx).
		Where("tier_id = ?", tierID).
		Order("feature_key ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
