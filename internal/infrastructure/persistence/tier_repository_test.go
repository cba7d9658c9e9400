package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/shared"
)

func TestGormTierRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierRepository(db)
	ctx := context.Background()

	tier, err := catalog.NewTier("starter", "Starter", decimal.NewFromInt(29), 1, catalog.ResourceCaps{MaxConcurrentSessions: 3})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tier))

	found, err := repo.FindByID(ctx, tier.ID)
	require.NoError(t, err)
	assert.Equal(t, "starter", found.Code)
	assert.True(t, decimal.NewFromInt(29).Equal(found.MonthlyPrice))

	byCode, err := repo.FindByCode(ctx, "starter")
	require.NoError(t, err)
	assert.Equal(t, tier.ID, byCode.ID)
}

func TestGormTierRepository_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierRepository(db)
	ctx := context.Background()

	first, err := catalog.NewTier("pro", "Professional", decimal.NewFromInt(99), 2, catalog.ResourceCaps{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := catalog.NewTier("pro", "Professional Again", decimal.NewFromInt(89), 3, catalog.ResourceCaps{})
	require.NoError(t, err)
	err = repo.Save(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestGormTierRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierRepository(db)

	_, err := repo.FindByCode(context.Background(), "missing")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormTierRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTierRepository(db)
	ctx := context.Background()

	free, err := catalog.NewTier("free", "Free", decimal.Zero, 0, catalog.ResourceCaps{})
	require.NoError(t, err)
	pro, err := catalog.NewTier("pro", "Professional", decimal.NewFromInt(99), 2, catalog.ResourceCaps{})
	require.NoError(t, err)
	pro.Deactivate()

	require.NoError(t, repo.Save(ctx, free))
	require.NoError(t, repo.Save(ctx, pro))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "free", all[0].Code)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "free", active[0].Code)
}

func TestGormTierFeatureRepository_SaveUpserts(t *testing.T) {
	db := setupTestDB(t)
	tierRepo := NewGormTierRepository(db)
	repo := NewGormTierFeatureRepository(db)
	ctx := context.Background()

	tier, err := catalog.NewTier("starter", "Starter", decimal.NewFromInt(29), 1, catalog.ResourceCaps{MaxConcurrentSessions: 3})
	require.NoError(t, err)
	require.NoError(t, tierRepo.Save(ctx, tier))

	limit := int64(100)
	entry, err := catalog.NewTierFeature(tier.ID, "api_calls", true, &limit)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, entry))

	// saving again for the same cell replaces the grant
	bigger := int64(500)
	update, err := catalog.NewTierFeature(tier.ID, "api_calls", true, &bigger)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, update))

	found, err := repo.FindByTierAndFeature(ctx, tier.ID, "api_calls")
	require.NoError(t, err)
	require.NotNil(t, found.Limit)
	assert.Equal(t, int64(500), *found.Limit)

	entries, err := repo.FindByTier(ctx, tier.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGormFeatureRepository_SaveAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFeatureRepository(db)
	ctx := context.Background()

	metered, err := catalog.NewFeature("api_calls", "monthly API quota", "automation", catalog.FeatureKindMetered)
	require.NoError(t, err)
	boolean, err := catalog.NewFeature("sso", "single sign-on", "identity", catalog.FeatureKindBoolean)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, metered))
	require.NoError(t, repo.Save(ctx, boolean))

	found, err := repo.FindByKey(ctx, "sso")
	require.NoError(t, err)
	assert.Equal(t, catalog.FeatureKindBoolean, found.Kind)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
