package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/domain/shared"
)

// GormSessionRepository implements session.Repository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Save persists a session
func (r *GormSessionRepository) Save(ctx context.Context, sess *session.Session) error {
	return r.db.WithContext(ctx).Save(sess).Error
}

// FindByID finds a session by its ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var sess session.Session
	if err := r.db.WithContext(ctx).First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Touch refreshes the activity timestamp of a still-active session.
// Revoked or unknown sessions are not revived.
func (r *GormSessionRepository) Touch(ctx context.Context, id uuid.UUID, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&session.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{
			"last_activity_at": now,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("SESSION_INVALID", "session is not active", shared.ErrInvalidState)
	}
	return nil
}

// scopeQuery narrows a query to the sessions counted by the
// concurrency policy
func scopeQuery(q *gorm.DB, scope session.Scope, organizationID, userID uuid.UUID) *gorm.DB {
	if scope == session.ScopeUser {
		return q.Where("user_id = ? AND is_active = ?", userID, true)
	}
	return q.Where("organization_id = ? AND is_active = ?", organizationID, true)
}

// CountActive counts the active sessions within the concurrency scope
func (r *GormSessionRepository) CountActive(ctx context.Context, scope session.Scope, organizationID, userID uuid.UUID) (int64, error) {
	var count int64
	err := scopeQuery(r.db.WithContext(ctx).Model(&session.Session{}), scope, organizationID, userID).
		Count(&count).Error
	return count, err
}

// ListActiveByOrganization returns the active sessions of an
// organization, least recently active first
func (r *GormSessionRepository) ListActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*session.Session, error) {
	var sessions []*session.Session
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", organizationID, true).
		Order("last_activity_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// RevokeOldestActive revokes the least recently active session in
// scope. The revoking update is guarded on is_active, so two
// concurrent openers cannot both claim the same victim; the loser
// re-reads and picks the next oldest.
func (r *GormSessionRepository) RevokeOldestActive(ctx context.Context, scope session.Scope, organizationID, userID uuid.UUID, reason session.RevokeReason, now time.Time) (*session.Session, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var victim session.Session
		if err := scopeQuery(r.db.WithContext(ctx), scope, organizationID, userID).
			Order("last_activity_at ASC").
			First(&victim).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, shared.ErrNotFound
			}
			return nil, err
		}

		result := r.db.WithContext(ctx).
			Model(&session.Session{}).
			Where("id = ? AND is_active = ?", victim.ID, true).
			Updates(map[string]any{
				"is_active":     false,
				"revoked_at":    now,
				"revoke_reason": reason,
				"updated_at":    now,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected > 0 {
			victim.Revoke(reason, now)
			return &victim, nil
		}
	}

	return nil, shared.NewDomainError("SESSION_EVICTION_CONFLICT", "could not claim a session to evict", shared.ErrConcurrencyConflict)
}

// RevokeAllByOrganization revokes every active session of the
// organization and returns the sessions that were revoked
func (r *GormSessionRepository) RevokeAllByOrganization(ctx context.Context, organizationID uuid.UUID, reason session.RevokeReason, now time.Time) ([]*session.Session, error) {
	var revoked []*session.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("organization_id = ? AND is_active = ?", organizationID, true).
			Find(&revoked).Error; err != nil {
			return err
		}
		if len(revoked) == 0 {
			return nil
		}

		if err := tx.Model(&session.Session{}).
			Where("organization_id = ? AND is_active = ?", organizationID, true).
			Updates(map[string]any{
				"is_active":     false,
				"revoked_at":    now,
				"revoke_reason": reason,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		for _, s := range revoked {
			s.Revoke(reason, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

// RevokeIdle revokes active sessions whose last activity predates the cutoff
func (r *GormSessionRepository) RevokeIdle(ctx context.Context, cutoff time.Time, now time.Time) ([]*session.Session, error) {
	var revoked []*session.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("is_active = ? AND last_activity_at <= ?", true, cutoff).
			Find(&revoked).Error; err != nil {
			return err
		}
		if len(revoked) == 0 {
			return nil
		}

		if err := tx.Model(&session.Session{}).
			Where("is_active = ? AND last_activity_at <= ?", true, cutoff).
			Updates(map[string]any{
				"is_active":     false,
				"revoked_at":    now,
				"revoke_reason": session.RevokeReasonIdle,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		for _, s := range revoked {
			s.Revoke(session.RevokeReasonIdle, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}
