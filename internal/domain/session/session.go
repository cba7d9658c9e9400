package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/compliport/backend/internal/domain/shared"
)

// RevokeReason records why a session stopped being valid
type RevokeReason string

const (
	// RevokeReasonLogout means the user ended the session themselves
	RevokeReasonLogout RevokeReason = "logout"
	// RevokeReasonEvicted means the session was the oldest when the
	// concurrency limit forced one out
	RevokeReasonEvicted RevokeReason = "evicted"
	// RevokeReasonSubscriptionEnded means the backing subscription
	// reached a terminal state
	RevokeReasonSubscriptionEnded RevokeReason = "subscription_ended"
	// RevokeReasonIdle means the session sat inactive past the idle timeout
	RevokeReasonIdle RevokeReason = "idle_timeout"
)

// Client captures where a session was opened from
type Client struct {
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

// Session is one authenticated presence of a user within an
// organization. The number of simultaneously active sessions is
// bounded by the organization's concurrency entitlement; opening one
// past the bound evicts the least recently active session.
type Session struct {
	shared.BaseEntity
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index:idx_org_active" json:"organization_id"`
	IPAddress      string       `gorm:"size:45" json:"ip_address"`
	UserAgent      string       `gorm:"size:255" json:"user_agent"`
	LastActivityAt time.Time    `gorm:"not null;index" json:"last_activity_at"`
	IsActive       bool         `gorm:"not null;default:true;index:idx_org_active" json:"is_active"`
	RevokedAt      *time.Time   `json:"revoked_at,omitempty"`
	RevokeReason   RevokeReason `gorm:"size:30" json:"revoke_reason,omitempty"`
}

// NewSession opens a session for a user in an organization
func NewSession(userID, organizationID uuid.UUID, client Client) (*Session, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER_ID", "user ID cannot be empty", shared.ErrInvalidInput)
	}
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_ID", "organization ID cannot be empty", shared.ErrInvalidInput)
	}
	base := shared.NewBaseEntity()
	return &Session{
		BaseEntity:     base,
		UserID:         userID,
		OrganizationID: organizationID,
		IPAddress:      client.IP,
		UserAgent:      client.UserAgent,
		LastActivityAt: base.CreatedAt,
		IsActive:       true,
	}, nil
}

// Touch records activity on the session
func (s *Session) Touch(now time.Time) {
	s.LastActivityAt = now
	s.UpdatedAt = now
}

// Revoke ends the session. Revoking an already-revoked session keeps
// the original reason.
func (s *Session) Revoke(reason RevokeReason, now time.Time) {
	if !s.IsActive {
		return
	}
	s.IsActive = false
	s.RevokedAt = &now
	s.RevokeReason = reason
	s.UpdatedAt = now
}

// IdleSince reports whether the session has been inactive for at
// least the given timeout.
func (s *Session) IdleSince(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivityAt) >= timeout
}

// TableName returns the table name for GORM
func (Session) TableName() string {
	return "sessions"
}
