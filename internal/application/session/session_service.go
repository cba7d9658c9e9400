package session

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
	"github.com/compliport/backend/internal/infrastructure/auth"
)

const (
	conflictRetries = 3
	conflictBackoff = 20 * time.Millisecond
)

// SubscriptionResolver answers which subscription is currently active
// for an organization. Satisfied by the subscription ledger service,
// which also heals stale rows on the way out.
type SubscriptionResolver interface {
	ActiveSubscription(ctx context.Context, organizationID uuid.UUID) (*subscription.Subscription, error)
}

// Service enforces the tier's concurrent session cap. Admission never
// turns a user away: when the cap is full the oldest session in scope
// is evicted to make room for the new one.
type Service struct {
	sessions    session.Repository
	tiers       catalog.TierRepository
	resolver    SubscriptionResolver
	tokens      *auth.TokenService
	blacklist   auth.SessionBlacklist
	scope       session.Scope
	idleTimeout time.Duration
	logger      *zap.Logger
}

// NewService creates a new session service
func NewService(
	sessions session.Repository,
	tiers catalog.TierRepository,
	resolver SubscriptionResolver,
	tokens *auth.TokenService,
	blacklist auth.SessionBlacklist,
	scope session.Scope,
	idleTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions:    sessions,
		tiers:       tiers,
		resolver:    resolver,
		tokens:      tokens,
		blacklist:   blacklist,
		scope:       scope,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Admit opens a session for the user and issues its token. If the
// organization's tier caps concurrent sessions and the cap is full,
// the oldest active sessions in scope are evicted first.
func (s *Service) Admit(ctx context.Context, userID, organizationID uuid.UUID, client session.Client) (*session.Session, *auth.SessionToken, error) {
	sub, err := s.resolver.ActiveSubscription(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}
	tier, err := s.tiers.FindByID(ctx, sub.TierID)
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.NewSession(userID, organizationID, client)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, err
	}

	evicted, err := s.enforceCap(ctx, tier.Caps.MaxConcurrentSessions, organizationID, userID)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.tokens.Issue(sess.ID, userID, organizationID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("session admitted",
		zap.String("session_id", sess.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("organization_id", organizationID.String()),
		zap.Int("evicted", evicted))
	return sess, token, nil
}

// enforceCap evicts oldest-in-scope sessions until the active count
// fits the cap. A zero cap means unlimited.
func (s *Service) enforceCap(ctx context.Context, limit int, organizationID, userID uuid.UUID) (int, error) {
	if limit <= 0 {
		return 0, nil
	}

	count, err := s.sessions.CountActive(ctx, s.scope, organizationID, userID)
	if err != nil {
		return 0, err
	}
	excess := int(count) - limit
	evicted := 0
	for i := 0; i < excess; i++ {
		var victim *session.Session
		err := shared.RetryConflicts(ctx, conflictRetries, conflictBackoff, func() error {
			var revokeErr error
			victim, revokeErr = s.sessions.RevokeOldestActive(ctx, s.scope, organizationID, userID, session.RevokeReasonEvicted, time.Now())
			return revokeErr
		})
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Someone else drained the pool under us.
				break
			}
			return evicted, err
		}

		if blErr := s.blacklist.Add(ctx, victim.ID.String(), s.tokens.GetExpiration()); blErr != nil {
			s.logger.Warn("failed to blacklist evicted session",
				zap.String("session_id", victim.ID.String()),
				zap.Error(blErr))
		}
		s.logger.Info("session evicted",
			zap.String("session_id", victim.ID.String()),
			zap.String("user_id", victim.UserID.String()),
			zap.String("organization_id", organizationID.String()))
		evicted++
	}
	return evicted, nil
}

// Touch records activity on a session, pushing it back in the
// eviction order. Touching a revoked session fails.
func (s *Service) Touch(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Touch(ctx, sessionID, time.Now())
}

// Invalidate ends a session on logout. Invalidating a session that is
// already gone is a no-op.
func (s *Service) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !sess.IsActive {
		return nil
	}

	now := time.Now()
	sess.Revoke(session.RevokeReasonLogout, now)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return err
	}
	if err := s.blacklist.Add(ctx, sessionID.String(), s.tokens.GetExpiration()); err != nil {
		s.logger.Warn("failed to blacklist logged-out session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
	}

	s.logger.Info("session invalidated",
		zap.String("session_id", sessionID.String()),
		zap.String("user_id", sess.UserID.String()))
	return nil
}

// IsValid reports whether a session may still be used. A session that
// has sat idle past the timeout is revoked on the spot.
func (s *Service) IsValid(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	revoked, err := s.blacklist.IsRevoked(ctx, sessionID.String())
	if err != nil {
		return false, err
	}
	if revoked {
		return false, nil
	}

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !sess.IsActive {
		return false, nil
	}

	now := time.Now()
	if s.idleTimeout > 0 && sess.IdleSince(now, s.idleTimeout) {
		sess.Revoke(session.RevokeReasonIdle, now)
		if err := s.sessions.Save(ctx, sess); err != nil {
			return false, err
		}
		if blErr := s.blacklist.Add(ctx, sessionID.String(), s.tokens.GetExpiration()); blErr != nil {
			s.logger.Warn("failed to blacklist idle session",
				zap.String("session_id", sessionID.String()),
				zap.Error(blErr))
		}
		return false, nil
	}

	return true, nil
}

// SweepIdle revokes every session whose last activity predates the
// idle timeout. Returns the number of sessions revoked.
func (s *Service) SweepIdle(ctx context.Context) (int, error) {
	if s.idleTimeout <= 0 {
		return 0, nil
	}

	now := time.Now()
	revoked, err := s.sessions.RevokeIdle(ctx, now.Add(-s.idleTimeout), now)
	if err != nil {
		return 0, err
	}
	for _, sess := range revoked {
		if blErr := s.blacklist.Add(ctx, sess.ID.String(), s.tokens.GetExpiration()); blErr != nil {
			s.logger.Warn("failed to blacklist idle session",
				zap.String("session_id", sess.ID.String()),
				zap.Error(blErr))
		}
	}

	if len(revoked) > 0 {
		s.logger.Info("idle sessions revoked", zap.Int("count", len(revoked)))
	}
	return len(revoked), nil
}

// ActiveSessions lists the organization's active sessions, oldest first
func (s *Service) ActiveSessions(ctx context.Context, organizationID uuid.UUID) ([]*session.Session, error) {
	return s.sessions.ListActiveByOrganization(ctx, organizationID)
}
