package subscription

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestNewSubscription(t *testing.T) {
	orgID := uuid.New()
	tierID := uuid.New()

	sub, err := NewSubscription(orgID, tierID, decimal.NewFromInt(29), futureTime(30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, PaymentPending, sub.PaymentStatus)
	require.NotNil(t, sub.ActiveFlag)
	assert.True(t, *sub.ActiveFlag)
	assert.True(t, sub.IsActive(time.Now()))
}

func TestNewSubscription_OpenEnded(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.Zero, nil)
	require.NoError(t, err)
	assert.Nil(t, sub.ExpiresAt)
	assert.True(t, sub.IsActive(time.Now().Add(100*365*24*time.Hour)))
}

func TestNewSubscription_Invalid(t *testing.T) {
	_, err := NewSubscription(uuid.Nil, uuid.New(), decimal.Zero, nil)
	assert.Error(t, err)

	_, err = NewSubscription(uuid.New(), uuid.Nil, decimal.Zero, nil)
	assert.Error(t, err)

	_, err = NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(-1), nil)
	assert.Error(t, err)

	past := time.Now().Add(-time.Hour)
	_, err = NewSubscription(uuid.New(), uuid.New(), decimal.Zero, &past)
	assert.Error(t, err)
}

func TestSubscription_Cancel(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), futureTime(time.Hour))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, sub.Cancel(now))
	assert.Equal(t, StatusCancelled, sub.Status)
	assert.Equal(t, PaymentCancelled, sub.PaymentStatus)
	require.NotNil(t, sub.CancelledAt)
	require.NotNil(t, sub.ExpiresAt)
	assert.Nil(t, sub.ActiveFlag)
	assert.False(t, sub.IsActive(now))

	// cancelling again is rejected at the entity level
	assert.Error(t, sub.Cancel(now))
}

func TestSubscription_CancelKeepsPaidStatus(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), futureTime(time.Hour))
	require.NoError(t, err)
	sub.MarkPaid()

	require.NoError(t, sub.Cancel(time.Now()))
	assert.Equal(t, PaymentPaid, sub.PaymentStatus)
}

func TestSubscription_Expire(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), futureTime(time.Hour))
	require.NoError(t, err)

	// not yet due
	assert.Error(t, sub.Expire(time.Now()))
	assert.Equal(t, StatusActive, sub.Status)

	require.NoError(t, sub.Expire(time.Now().Add(2*time.Hour)))
	assert.Equal(t, StatusExpired, sub.Status)
	assert.Nil(t, sub.ActiveFlag)

	// expiring a terminal subscription is a no-op
	require.NoError(t, sub.Expire(time.Now().Add(3*time.Hour)))
	assert.Equal(t, StatusExpired, sub.Status)
}

func TestSubscription_ExpireOpenEnded(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.Zero, nil)
	require.NoError(t, err)

	// an open-ended subscription never falls due
	assert.Error(t, sub.Expire(time.Now().Add(time.Hour)))
	assert.Equal(t, StatusActive, sub.Status)
}

func TestSubscription_Supersede(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), nil)
	require.NoError(t, err)

	now := time.Now()
	sub.Supersede(now)
	assert.Equal(t, StatusSuperseded, sub.Status)
	assert.Nil(t, sub.ActiveFlag)
	require.NotNil(t, sub.ExpiresAt)
	assert.Equal(t, now, *sub.ExpiresAt)

	// superseding a cancelled subscription leaves it cancelled
	other, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), nil)
	require.NoError(t, err)
	require.NoError(t, other.Cancel(now))
	other.Supersede(now.Add(time.Minute))
	assert.Equal(t, StatusCancelled, other.Status)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.True(t, StatusSuperseded.IsTerminal())
}

func TestSubscription_IsActiveRespectsExpiry(t *testing.T) {
	sub, err := NewSubscription(uuid.New(), uuid.New(), decimal.NewFromInt(29), futureTime(time.Hour))
	require.NoError(t, err)

	// status still says active, but the clock has passed the end date
	assert.False(t, sub.IsActive(time.Now().Add(2*time.Hour)))
}
