package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	sess, err := NewSession(uuid.New(), uuid.New(), Client{})
	require.NoError(t, err)
	assert.True(t, sess.IsActive)
	assert.Equal(t, sess.CreatedAt, sess.LastActivityAt)

	_, err = NewSession(uuid.Nil, uuid.New(), Client{})
	assert.Error(t, err)

	_, err = NewSession(uuid.New(), uuid.Nil, Client{})
	assert.Error(t, err)
}

func TestNewSession_RecordsClient(t *testing.T) {
	sess, err := NewSession(uuid.New(), uuid.New(), Client{
		IP:        "203.0.113.9",
		UserAgent: "compliport-cli/2.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", sess.IPAddress)
	assert.Equal(t, "compliport-cli/2.1", sess.UserAgent)
}

func TestSession_Touch(t *testing.T) {
	sess, err := NewSession(uuid.New(), uuid.New(), Client{})
	require.NoError(t, err)

	later := time.Now().Add(10 * time.Minute)
	sess.Touch(later)
	assert.Equal(t, later, sess.LastActivityAt)
}

func TestSession_Revoke(t *testing.T) {
	sess, err := NewSession(uuid.New(), uuid.New(), Client{})
	require.NoError(t, err)

	now := time.Now()
	sess.Revoke(RevokeReasonEvicted, now)
	assert.False(t, sess.IsActive)
	assert.Equal(t, RevokeReasonEvicted, sess.RevokeReason)
	require.NotNil(t, sess.RevokedAt)

	// a second revoke keeps the original reason
	sess.Revoke(RevokeReasonLogout, now.Add(time.Minute))
	assert.Equal(t, RevokeReasonEvicted, sess.RevokeReason)
	assert.Equal(t, now, *sess.RevokedAt)
}

func TestSession_IdleSince(t *testing.T) {
	sess, err := NewSession(uuid.New(), uuid.New(), Client{})
	require.NoError(t, err)
	sess.LastActivityAt = time.Now().Add(-2 * time.Hour)

	assert.True(t, sess.IdleSince(time.Now(), time.Hour))
	assert.False(t, sess.IdleSince(time.Now(), 3*time.Hour))
}
