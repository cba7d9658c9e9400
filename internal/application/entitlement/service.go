package entitlement

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/metering"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

// Reason explains a decision
type Reason string

const (
	ReasonAllowed              Reason = "ALLOWED"
	ReasonNotEntitled          Reason = "NOT_ENTITLED"
	ReasonQuotaExceeded        Reason = "QUOTA_EXCEEDED"
	ReasonNoActiveSubscription Reason = "NO_ACTIVE_SUBSCRIPTION"
)

// Decision is the facade's answer to "may this organization use this
// feature". Business denials land here with Allowed false; only
// malformed requests and storage failures surface as errors.
// A nil Limit means the feature is not metered against a ceiling;
// Remaining is nil in that case too.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	Reason     Reason `json:"reason"`
	FeatureKey string `json:"feature_key"`
	Used       int64  `json:"used"`
	Limit      *int64 `json:"limit,omitempty"`
	Remaining  *int64 `json:"remaining,omitempty"`
}

// FeatureUsage is one line of an organization's usage summary
type FeatureUsage struct {
	FeatureKey string `json:"feature_key"`
	Period     string `json:"period"`
	Used       int64  `json:"used"`
	Limit      *int64 `json:"limit,omitempty"`
	Remaining  *int64 `json:"remaining,omitempty"`
}

// SubscriptionResolver answers which subscription is currently active
// for an organization.
type SubscriptionResolver interface {
	ActiveSubscription(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error)
}

// Service is the entitlement facade: the single gate callers ask
// before exercising a feature.
type Service struct {
	features     catalog.FeatureRepository
	tierFeatures catalog.TierFeatureRepository
	meter        metering.Repository
	resolver     SubscriptionResolver
	logger       *zap.Logger
}

// NewService creates a new entitlement service
func NewService(
	features catalog.FeatureRepository,
	tierFeatures catalog.TierFeatureRepository,
	meter metering.Repository,
	resolver SubscriptionResolver,
	logger *zap.Logger,
) *Service {
	return &Service{
		features:     features,
		tierFeatures: tierFeatures,
		meter:        meter,
		resolver:     resolver,
		logger:       logger,
	}
}

// Authorize checks whether the organization may use the feature right
// now, without consuming any quota.
func (s *Service) Authorize(ctx context.Context, organizationID uuid.UUID, featureKey string) (Decision, error) {
	feature, capability, sub, decision, err := s.resolve(ctx, organizationID, featureKey)
	if err != nil || decision != nil {
		return deref(decision), err
	}

	// The grant's limit is the only thing that meters a feature; the
	// feature kind never overrides it.
	if capability.Limit == nil {
		return allowed(feature.Key, 0, nil), nil
	}

	used, err := s.meter.CurrentCount(ctx, sub.ID, feature.Key, metering.CurrentPeriod())
	if err != nil {
		return Decision{}, err
	}
	if used >= *capability.Limit {
		return denied(feature.Key, ReasonQuotaExceeded, used, capability.Limit), nil
	}
	return allowed(feature.Key, used, capability.Limit), nil
}

// RecordUsage atomically consumes quota against the grant's limit and
// reports what is left. Unlimited features still get their counters
// bumped so the summary stays honest.
func (s *Service) RecordUsage(ctx context.Context, organizationID uuid.UUID, featureKey string, amount int64) (Decision, error) {
	feature, capability, sub, decision, err := s.resolve(ctx, organizationID, featureKey)
	if err != nil || decision != nil {
		return deref(decision), err
	}

	limit := capability.Limit
	count, err := s.meter.TryConsume(ctx, sub.ID, feature.Key, metering.CurrentPeriod(), amount, limit)
	if err != nil {
		if errors.Is(err, shared.ErrQuotaExceeded) {
			s.logger.Info("usage denied",
				zap.String("organization_id", organizationID.String()),
				zap.String("feature", feature.Key),
				zap.Int64("used", count))
			return denied(feature.Key, ReasonQuotaExceeded, count, limit), nil
		}
		return Decision{}, err
	}
	return allowed(feature.Key, count, limit), nil
}

// UsageSummary reports the organization's consumption for the current
// period, one line per feature that has been used, with the tier's
// ceilings attached.
func (s *Service) UsageSummary(ctx context.Context, organizationID uuid.UUID) ([]FeatureUsage, error) {
	sub, err := s.resolver.ActiveSubscription(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	period := metering.CurrentPeriod()
	counters, err := s.meter.ListBySubscription(ctx, sub.ID, period)
	if err != nil {
		return nil, err
	}

	summary := make([]FeatureUsage, 0, len(counters))
	for _, counter := range counters {
		capability, err := s.capability(ctx, sub.TierID, counter.FeatureKey)
		if err != nil {
			return nil, err
		}
		line := FeatureUsage{
			FeatureKey: counter.FeatureKey,
			Period:     period.Key(),
			Used:       counter.Count,
			Limit:      capability.Limit,
		}
		if capability.Limit != nil {
			line.Remaining = remainingOf(counter.Count, capability.Limit)
		}
		summary = append(summary, line)
	}
	return summary, nil
}

// resolve walks the common checks shared by Authorize and
// RecordUsage. A non-nil decision is a final business denial; the
// remaining return values are only meaningful when it is nil.
func (s *Service) resolve(ctx context.Context, organizationID uuid.UUID, featureKey string) (*catalog.Feature, catalog.Capability, *subscription.Subscription, *Decision, error) {
	featureKey = strings.ToLower(strings.TrimSpace(featureKey))

	feature, err := s.features.FindByKey(ctx, featureKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.Capability{}, nil, nil,
				shared.NewDomainError("UNKNOWN_FEATURE", "feature is not in the catalog: "+featureKey, shared.ErrNotFound)
		}
		return nil, catalog.Capability{}, nil, nil, err
	}

	sub, err := s.resolver.ActiveSubscription(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			d := denied(feature.Key, ReasonNoActiveSubscription, 0, nil)
			return nil, catalog.Capability{}, nil, &d, nil
		}
		return nil, catalog.Capability{}, nil, nil, err
	}

	capability, err := s.capability(ctx, sub.TierID, feature.Key)
	if err != nil {
		return nil, catalog.Capability{}, nil, nil, err
	}
	if !capability.Enabled {
		d := denied(feature.Key, ReasonNotEntitled, 0, nil)
		return nil, catalog.Capability{}, nil, &d, nil
	}

	return feature, capability, sub, nil, nil
}

// capability looks up the matrix cell. Only a missing row means the
// feature is disabled; storage failures propagate so they are never
// mistaken for a business denial.
func (s *Service) capability(ctx context.Context, tierID uuid.UUID, featureKey string) (catalog.Capability, error) {
	entry, err := s.tierFeatures.FindByTierAndFeature(ctx, tierID, featureKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.DisabledCapability(featureKey), nil
		}
		return catalog.Capability{}, err
	}
	return entry.Capability(), nil
}

func allowed(featureKey string, used int64, limit *int64) Decision {
	d := Decision{
		Allowed:    true,
		Reason:     ReasonAllowed,
		FeatureKey: featureKey,
		Used:       used,
		Limit:      limit,
	}
	if limit != nil {
		d.Remaining = remainingOf(used, limit)
	}
	return d
}

func denied(featureKey string, reason Reason, used int64, limit *int64) Decision {
	d := Decision{
		Allowed:    false,
		Reason:     reason,
		FeatureKey: featureKey,
		Used:       used,
		Limit:      limit,
	}
	if limit != nil {
		d.Remaining = remainingOf(used, limit)
	}
	return d
}

func remainingOf(used int64, limit *int64) *int64 {
	left := *limit - used
	if left < 0 {
		left = 0
	}
	return &left
}

func deref(d *Decision) Decision {
	if d == nil {
		return Decision{}
	}
	return *d
}
