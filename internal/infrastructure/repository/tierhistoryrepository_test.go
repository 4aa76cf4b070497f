package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

func TestTierHistoryRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTierHistoryRepository(db, logger.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	upgrade, err := tier.NewHistory(1, tier.PlanFree, tier.PlanPremium, tier.ChangeReasonUpgrade, now.Add(-48*time.Hour), "")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, upgrade))

	downgrade, err := tier.NewHistory(1, tier.PlanPremium, tier.PlanFree, tier.ChangeReasonExpiration, now, "grace period elapsed")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, downgrade))

	other, err := tier.NewHistory(2, tier.PlanFree, tier.PlanPremium, tier.ChangeReasonUpgrade, now, "")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, other))

	entries, err := repo.ListByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, tier.ChangeReasonExpiration, entries[0].ChangeReason())
	assert.Equal(t, tier.ChangeReasonUpgrade, entries[1].ChangeReason())
	assert.Equal(t, "grace period elapsed", entries[0].Notes())
}

func TestTierHistoryRepository_ListLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTierHistoryRepository(db, logger.NewLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry, err := tier.NewHistory(1, tier.PlanFree, tier.PlanPremium, tier.ChangeReasonManual, time.Now().UTC(), "")
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
	}

	entries, err := repo.ListByUser(ctx, 1, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
