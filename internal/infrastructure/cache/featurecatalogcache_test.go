package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

// stubDefinitionSource is an in-memory FeatureDefinitionRepository that
// counts reads, to observe cache hits and misses.
type stubDefinitionSource struct {
	defs  map[tier.Plan][]*tier.FeatureDefinition
	reads int
	err   error
}

func (s *stubDefinitionSource) GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return s.defs[plan], nil
}

func (s *stubDefinitionSource) Get(ctx context.Context, plan tier.Plan, feature tier.Feature) (*tier.FeatureDefinition, error) {
	for _, def := range s.defs[plan] {
		if def.Feature() == feature {
			return def, nil
		}
	}
	return nil, nil
}

func (s *stubDefinitionSource) Upsert(ctx context.Context, def *tier.FeatureDefinition) error {
	s.defs[def.Plan()] = append(s.defs[def.Plan()], def)
	return nil
}

func mustDef(t *testing.T, id uint, plan tier.Plan, feature tier.Feature, limit *uint, enabled bool) *tier.FeatureDefinition {
	t.Helper()
	now := time.Now().UTC()
	def, err := tier.ReconstructFeatureDefinition(id, plan, feature, limit, enabled, "", now, now)
	require.NoError(t, err)
	return def
}

func setupCache(t *testing.T) (*FeatureCatalogCache, *stubDefinitionSource) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limit := uint(50)
	source := &stubDefinitionSource{defs: map[tier.Plan][]*tier.FeatureDefinition{
		tier.PlanFree: {
			mustDef(t, 1, tier.PlanFree, tier.FeatureProducts, &limit, true),
			mustDef(t, 2, tier.PlanFree, tier.FeatureAnalytics, nil, false),
		},
	}}

	return NewFeatureCatalogCache(client, source, logger.NewLogger()), source
}

func TestFeatureCatalogCache_ReadThrough(t *testing.T) {
	cache, source := setupCache(t)
	ctx := context.Background()

	defs, err := cache.GetByPlan(ctx, tier.PlanFree)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 1, source.reads)

	// Second read is served from cache.
	defs, err = cache.GetByPlan(ctx, tier.PlanFree)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 1, source.reads)

	assert.Equal(t, tier.FeatureProducts, defs[0].Feature())
	assert.Equal(t, uint(50), *defs[0].Limit())
	assert.True(t, defs[0].Enabled())
	assert.False(t, defs[1].Enabled())
}

func TestFeatureCatalogCache_Invalidate(t *testing.T) {
	cache, source := setupCache(t)
	ctx := context.Background()

	_, err := cache.GetByPlan(ctx, tier.PlanFree)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, tier.PlanFree))

	_, err = cache.GetByPlan(ctx, tier.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 2, source.reads)
}

func TestFeatureCatalogCache_SourceErrorPropagates(t *testing.T) {
	cache, source := setupCache(t)
	source.err = errors.New("datastore unavailable")

	_, err := cache.GetByPlan(context.Background(), tier.PlanFree)
	assert.Error(t, err)
}
