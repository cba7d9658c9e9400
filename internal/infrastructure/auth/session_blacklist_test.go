package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemorySessionBlacklist()

	revoked, err := bl.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Add(ctx, "session-1", time.Minute))

	revoked, err = bl.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "session-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemorySessionBlacklist_EntryLapses(t *testing.T) {
	ctx := context.Background()
	bl := NewInMemorySessionBlacklist()

	require.NoError(t, bl.Add(ctx, "session-1", -time.Second))

	revoked, err := bl.IsRevoked(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
