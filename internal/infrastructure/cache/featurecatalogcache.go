// Package cache provides Redis-backed read-through caches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

const (
	catalogKeyPrefix = "tier:catalog:"
	baseCatalogTTL   = 60 * time.Minute
	catalogTTLJitter = 20 * time.Minute // TTL range: 60-80 min (anti-stampede)
)

// cachedDefinition is the serialized form of a feature definition. The
// catalog is reference data, so only the grant fields are cached.
type cachedDefinition struct {
	ID          uint   `json:"id"`
	Feature     string `json:"feature"`
	Limit       *uint  `json:"limit"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// FeatureCatalogCache is a Redis read-through cache over the feature
// definition repository. Entitlement resolution hits the catalog on every
// request; the definitions change only on reseeding, so a cached copy with
// invalidation on write keeps the hot path off the database.
type FeatureCatalogCache struct {
	client *redis.Client
	source tier.FeatureDefinitionRepository
	logger logger.Interface
}

// NewFeatureCatalogCache creates a new Redis-backed feature catalog cache.
func NewFeatureCatalogCache(client *redis.Client, source tier.FeatureDefinitionRepository, logger logger.Interface) *FeatureCatalogCache {
	return &FeatureCatalogCache{
		client: client,
		source: source,
		logger: logger,
	}
}

func (c *FeatureCatalogCache) key(plan tier.Plan) string {
	return catalogKeyPrefix + plan.String()
}

// GetByPlan returns the plan's feature definitions, from cache when
// available. Cache failures fall back to the repository; a stale or
// unavailable cache must never block entitlement resolution.
func (c *FeatureCatalogCache) GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error) {
	key := c.key(plan)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		defs, decodeErr := decodeDefinitions(plan, raw)
		if decodeErr == nil {
			return defs, nil
		}
		c.logger.Warnw("failed to decode cached catalog, falling back to repository",
			"plan", plan,
			"error", decodeErr,
		)
	} else if err != redis.Nil {
		c.logger.Warnw("catalog cache read failed, falling back to repository",
			"plan", plan,
			"error", err,
		)
	}

	defs, err := c.source.GetByPlan(ctx, plan)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, key, defs); err != nil {
		c.logger.Warnw("failed to cache catalog", "plan", plan, "error", err)
	}

	return defs, nil
}

// Invalidate drops the cached catalog for a plan. Called after reseeding.
func (c *FeatureCatalogCache) Invalidate(ctx context.Context, plan tier.Plan) error {
	if err := c.client.Del(ctx, c.key(plan)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}

	c.logger.Debugw("feature catalog cache invalidated", "plan", plan)
	return nil
}

func (c *FeatureCatalogCache) store(ctx context.Context, key string, defs []*tier.FeatureDefinition) error {
	cached := make([]cachedDefinition, 0, len(defs))
	for _, def := range defs {
		cached = append(cached, cachedDefinition{
			ID:          def.ID(),
			Feature:     def.Feature().String(),
			Limit:       def.Limit(),
			Enabled:     def.Enabled(),
			Description: def.Description(),
		})
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, catalogTTLWithJitter()).Err(); err != nil {
		return fmt.Errorf("failed to set catalog in cache: %w", err)
	}

	return nil
}

func decodeDefinitions(plan tier.Plan, raw string) ([]*tier.FeatureDefinition, error) {
	var cached []cachedDefinition
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	now := time.Now().UTC()
	defs := make([]*tier.FeatureDefinition, 0, len(cached))
	for _, entry := range cached {
		def, err := tier.ReconstructFeatureDefinition(
			entry.ID,
			plan,
			tier.Feature(entry.Feature),
			entry.Limit,
			entry.Enabled,
			entry.Description,
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild definition %q: %w", entry.Feature, err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// catalogTTLWithJitter returns a randomized TTL to prevent cache stampede.
func catalogTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(catalogTTLJitter)))
	return baseCatalogTTL + jitter
}
