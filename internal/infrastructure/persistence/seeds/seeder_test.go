package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

type recordingDefinitionRepo struct {
	upserts map[string]*tier.FeatureDefinition
}

func (r *recordingDefinitionRepo) GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error) {
	var out []*tier.FeatureDefinition
	for _, def := range r.upserts {
		if def.Plan() == plan {
			out = append(out, def)
		}
	}
	return out, nil
}

func (r *recordingDefinitionRepo) Get(ctx context.Context, plan tier.Plan, feature tier.Feature) (*tier.FeatureDefinition, error) {
	return r.upserts[plan.String()+"/"+feature.String()], nil
}

func (r *recordingDefinitionRepo) Upsert(ctx context.Context, def *tier.FeatureDefinition) error {
	r.upserts[def.Plan().String()+"/"+def.Feature().String()] = def
	return nil
}

func TestSeedFeatureCatalog(t *testing.T) {
	repo := &recordingDefinitionRepo{upserts: make(map[string]*tier.FeatureDefinition)}

	err := SeedFeatureCatalog(context.Background(), repo, logger.NewLogger())
	require.NoError(t, err)

	// Every known feature is defined for both plans.
	assert.Len(t, repo.upserts, 2*len(tier.KnownFeatures))

	products := repo.upserts["free/products"]
	require.NotNil(t, products)
	assert.True(t, products.Enabled())
	require.NotNil(t, products.Limit())
	assert.Equal(t, uint(50), *products.Limit())

	categories := repo.upserts["free/categories"]
	require.NotNil(t, categories)
	assert.Equal(t, uint(10), *categories.Limit())

	importBatch := repo.upserts["free/import_batch"]
	require.NotNil(t, importBatch)
	assert.Equal(t, uint(100), *importBatch.Limit())

	notifications := repo.upserts["free/notifications"]
	require.NotNil(t, notifications)
	assert.Equal(t, uint(30), *notifications.Limit())

	// Analytics and export are premium-only.
	assert.False(t, repo.upserts["free/analytics"].Enabled())
	assert.False(t, repo.upserts["free/export"].Enabled())

	// Premium is enabled and unlimited across the board.
	for _, f := range tier.KnownFeatures {
		def := repo.upserts["premium/"+f.String()]
		require.NotNil(t, def, "missing premium definition for %s", f)
		assert.True(t, def.Grant().Unlimited(), "premium %s should be unlimited", f)
	}

	// Reseeding is idempotent.
	require.NoError(t, SeedFeatureCatalog(context.Background(), repo, logger.NewLogger()))
	assert.Len(t, repo.upserts, 2*len(tier.KnownFeatures))
}
