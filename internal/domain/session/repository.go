package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Scope selects whose sessions count against the concurrency limit
type Scope string

const (
	// ScopeOrganization counts sessions of all users in the organization
	ScopeOrganization Scope = "organization"
	// ScopeUser counts only the user's own sessions
	ScopeUser Scope = "user"
)

// IsValid checks if the scope is a known value
func (s Scope) IsValid() bool {
	return s == ScopeOrganization || s == ScopeUser
}

// Repository defines the persistence interface for sessions.
//
// RevokeOldestActive must pick the active session in scope with the
// earliest last activity and revoke it in one atomic step, so two
// concurrent openers cannot both claim the same victim and overshoot
// the limit. Touch must only refresh sessions that are still active;
// a revoked session is never revived.
type Repository interface {
	Save(ctx context.Context, sess *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Touch(ctx context.Context, id uuid.UUID, now time.Time) error
	CountActive(ctx context.Context, scope Scope, organizationID, userID uuid.UUID) (int64, error)
	ListActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Session, error)
	RevokeOldestActive(ctx context.Context, scope Scope, organizationID, userID uuid.UUID, reason RevokeReason, now time.Time) (*Session, error)
	RevokeAllByOrganization(ctx context.Context, organizationID uuid.UUID, reason RevokeReason, now time.Time) ([]*Session, error)
	// RevokeIdle revokes active sessions whose last activity predates the cutoff.
	RevokeIdle(ctx context.Context, cutoff time.Time, now time.Time) ([]*Session, error)
}
