package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/domain/subscription"
)

const (
	conflictRetries = 3
	conflictBackoff = 20 * time.Millisecond
)

// LedgerService owns the subscription lifecycle for organizations.
// Every question about "which subscription is active" goes through
// here, so no two code paths can disagree mid-transition.
type LedgerService struct {
	subs     subscription.Repository
	tiers    catalog.TierRepository
	sessions session.Repository
	term     time.Duration
	logger   *zap.Logger
}

// NewLedgerService creates a new subscription ledger service. A zero
// term makes new subscriptions open-ended.
func NewLedgerService(
	subs subscription.Repository,
	tiers catalog.TierRepository,
	sessions session.Repository,
	term time.Duration,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		subs:     subs,
		tiers:    tiers,
		sessions: sessions,
		term:     term,
		logger:   logger,
	}
}

// Activate starts a new subscription for the organization, atomically
// superseding whatever was active before. Concurrent activations are
// retried a bounded number of times; the survivor wins.
func (s *LedgerService) Activate(ctx context.Context, organizationID, tierID uuid.UUID, paymentConfirmed bool) (*subscription.Subscription, error) {
	tier, err := s.tiers.FindByID(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if !tier.IsActive {
		return nil, shared.NewDomainError("TIER_NOT_AVAILABLE", "tier is not available for sale", shared.ErrInvalidState)
	}

	var sub *subscription.Subscription
	err = shared.RetryConflicts(ctx, conflictRetries, conflictBackoff, func() error {
		fresh, err := subscription.NewSubscription(organizationID, tierID, tier.MonthlyPrice, s.termEnd())
		if err != nil {
			return err
		}
		if paymentConfirmed {
			fresh.MarkPaid()
		}
		prior, err := s.subs.Activate(ctx, fresh)
		if err != nil {
			return err
		}
		if prior != nil {
			s.logger.Info("subscription superseded",
				zap.String("organization_id", organizationID.String()),
				zap.String("prior_subscription_id", prior.ID.String()))
		}
		sub = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription activated",
		zap.String("organization_id", organizationID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.String("tier", tier.Code),
		zap.Bool("paid", paymentConfirmed))
	return sub, nil
}

// ActiveSubscription returns the organization's active subscription.
// An active row whose end date has quietly passed is healed to
// expired on the spot and reported as absent.
func (s *LedgerService) ActiveSubscription(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.subs.FindActiveByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NO_ACTIVE_SUBSCRIPTION", "organization has no active subscription", shared.ErrNotFound)
		}
		return nil, err
	}

	now := time.Now()
	if !sub.IsActive(now) {
		if healErr := s.expireOne(ctx, sub, now); healErr != nil {
			s.logger.Warn("failed to heal expired subscription",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(healErr))
		}
		return nil, shared.NewDomainError("NO_ACTIVE_SUBSCRIPTION", "organization has no active subscription", shared.ErrNotFound)
	}
	return sub, nil
}

// Cancel deactivates the organization's active subscription and
// revokes its sessions. Cancelling when nothing is active is a no-op.
func (s *LedgerService) Cancel(ctx context.Context, organizationID uuid.UUID) error {
	sub, err := s.subs.FindActiveByOrganization(ctx, organizationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	if err := sub.Cancel(now); err != nil {
		return err
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return err
	}

	revoked, err := s.sessions.RevokeAllByOrganization(ctx, organizationID, session.RevokeReasonSubscriptionEnded, now)
	if err != nil {
		s.logger.Warn("failed to revoke sessions after cancellation",
			zap.String("organization_id", organizationID.String()),
			zap.Error(err))
	}

	s.logger.Info("subscription cancelled",
		zap.String("organization_id", organizationID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.Int("sessions_revoked", len(revoked)))
	return nil
}

// History returns the organization's subscriptions, newest first
func (s *LedgerService) History(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[*subscription.Subscription], error) {
	return s.subs.ListByOrganization(ctx, organizationID, filter)
}

// ExpireDue sweeps active subscriptions whose end date has passed and
// expires them. Safe to run concurrently with everything else; it
// only transitions rows that are already due.
func (s *LedgerService) ExpireDue(ctx context.Context, batchSize int) (int, error) {
	now := time.Now()
	due, err := s.subs.FindDueForExpiry(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range due {
		if err := s.expireOne(ctx, sub, now); err != nil {
			s.logger.Warn("failed to expire subscription",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired due subscriptions", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *LedgerService) expireOne(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if err := sub.Expire(now); err != nil {
		return err
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllByOrganization(ctx, sub.OrganizationID, session.RevokeReasonSubscriptionEnded, now); err != nil {
		return err
	}
	return nil
}

func (s *LedgerService) termEnd() *time.Time {
	if s.term <= 0 {
		return nil
	}
	end := time.Now().Add(s.term)
	return &end
}
