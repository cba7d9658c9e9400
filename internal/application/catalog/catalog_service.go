package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/shared"
)

// CreateTierInput carries the fields for defining a new tier
type CreateTierInput struct {
	Code         string               `json:"code" validate:"required"`
	DisplayName  string               `json:"display_name" validate:"required"`
	Description  string               `json:"description"`
	MonthlyPrice decimal.Decimal      `json:"monthly_price"`
	YearlyPrice  decimal.Decimal      `json:"yearly_price"`
	Rank         int                  `json:"rank"`
	Caps         catalog.ResourceCaps `json:"caps"`
}

// CreateFeatureInput carries the fields for registering a new feature
type CreateFeatureInput struct {
	Key         string              `json:"key" validate:"required"`
	Description string              `json:"description"`
	Module      string              `json:"module"`
	Premium     bool                `json:"premium"`
	Kind        catalog.FeatureKind `json:"kind" validate:"required"`
}

// TierWithCapabilities pairs a tier with everything it grants
type TierWithCapabilities struct {
	Tier         *catalog.Tier        `json:"tier"`
	Capabilities []catalog.Capability `json:"capabilities"`
}

// Service manages the entitlement catalog: tiers, features, and the
// matrix binding them.
type Service struct {
	tiers        catalog.TierRepository
	features     catalog.FeatureRepository
	tierFeatures catalog.TierFeatureRepository
	logger       *zap.Logger
}

// NewService creates a new catalog service
func NewService(
	tiers catalog.TierRepository,
	features catalog.FeatureRepository,
	tierFeatures catalog.TierFeatureRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		tiers:        tiers,
		features:     features,
		tierFeatures: tierFeatures,
		logger:       logger,
	}
}

// CreateTier defines a new tier in the catalog
func (s *Service) CreateTier(ctx context.Context, input CreateTierInput) (*catalog.Tier, error) {
	tier, err := catalog.NewTier(input.Code, input.DisplayName, input.MonthlyPrice, input.Rank, input.Caps)
	if err != nil {
		return nil, err
	}
	tier.Description = input.Description
	if err := tier.UpdateYearlyPrice(input.YearlyPrice); err != nil {
		return nil, err
	}

	if err := s.tiers.Save(ctx, tier); err != nil {
		return nil, err
	}

	s.logger.Info("tier created",
		zap.String("code", tier.Code),
		zap.String("price", tier.MonthlyPrice.String()),
		zap.Int("rank", tier.Rank))
	return tier, nil
}

// UpdateTierPrice changes a tier's monthly price. Existing
// subscriptions keep the price they paid.
func (s *Service) UpdateTierPrice(ctx context.Context, code string, price decimal.Decimal) (*catalog.Tier, error) {
	tier, err := s.tiers.FindByCode(ctx, strings.ToLower(code))
	if err != nil {
		return nil, err
	}
	if err := tier.UpdatePrice(price); err != nil {
		return nil, err
	}
	if err := s.tiers.Save(ctx, tier); err != nil {
		return nil, err
	}

	s.logger.Info("tier price updated",
		zap.String("code", tier.Code),
		zap.String("price", price.String()))
	return tier, nil
}

// DeactivateTier withdraws a tier from sale. Organizations already on
// the tier are unaffected.
func (s *Service) DeactivateTier(ctx context.Context, code string) error {
	tier, err := s.tiers.FindByCode(ctx, strings.ToLower(code))
	if err != nil {
		return err
	}
	tier.Deactivate()
	if err := s.tiers.Save(ctx, tier); err != nil {
		return err
	}

	s.logger.Info("tier deactivated", zap.String("code", tier.Code))
	return nil
}

// CreateFeature registers a new feature in the catalog
func (s *Service) CreateFeature(ctx context.Context, input CreateFeatureInput) (*catalog.Feature, error) {
	feature, err := catalog.NewFeature(input.Key, input.Description, input.Module, input.Kind)
	if err != nil {
		return nil, err
	}
	if input.Premium {
		feature.MarkPremium()
	}

	if err := s.features.Save(ctx, feature); err != nil {
		return nil, err
	}

	s.logger.Info("feature created",
		zap.String("key", feature.Key),
		zap.String("kind", string(feature.Kind)))
	return feature, nil
}

// GrantFeature writes one cell of the entitlement matrix. Granting a
// feature a tier already has overwrites the cell, so limits can be
// raised or lowered in place.
func (s *Service) GrantFeature(ctx context.Context, tierCode, featureKey string, enabled bool, limit *int64) (*catalog.TierFeature, error) {
	tier, err := s.tiers.FindByCode(ctx, strings.ToLower(tierCode))
	if err != nil {
		return nil, err
	}
	feature, err := s.features.FindByKey(ctx, strings.ToLower(featureKey))
	if err != nil {
		return nil, err
	}

	entry, err := catalog.NewTierFeature(tier.ID, feature.Key, enabled, limit)
	if err != nil {
		return nil, err
	}
	if err := s.tierFeatures.Save(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("entitlement granted",
		zap.String("tier", tier.Code),
		zap.String("feature", feature.Key),
		zap.Bool("enabled", enabled))
	return entry, nil
}

// Capability answers what a tier grants for a feature. A missing
// matrix cell means the feature is not granted; any other lookup
// failure propagates.
func (s *Service) Capability(ctx context.Context, tierID uuid.UUID, featureKey string) (catalog.Capability, error) {
	featureKey = strings.ToLower(featureKey)
	entry, err := s.tierFeatures.FindByTierAndFeature(ctx, tierID, featureKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.DisabledCapability(featureKey), nil
		}
		return catalog.Capability{}, err
	}
	return entry.Capability(), nil
}

// ListTiers returns tiers with their capabilities, cheapest rank first
func (s *Service) ListTiers(ctx context.Context, onlyActive bool) ([]TierWithCapabilities, error) {
	tiers, err := s.tiers.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}

	result := make([]TierWithCapabilities, 0, len(tiers))
	for _, tier := range tiers {
		entries, err := s.tierFeatures.FindByTier(ctx, tier.ID)
		if err != nil {
			return nil, err
		}
		capabilities := make([]catalog.Capability, 0, len(entries))
		for _, entry := range entries {
			capabilities = append(capabilities, entry.Capability())
		}
		result = append(result, TierWithCapabilities{Tier: tier, Capabilities: capabilities})
	}
	return result, nil
}

// ListFeatures returns every feature in the catalog
func (s *Service) ListFeatures(ctx context.Context) ([]*catalog.Feature, error) {
	return s.features.List(ctx)
}
