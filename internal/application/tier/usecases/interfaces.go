package usecases

import (
	"context"

	"stockpilot/internal/domain/tier"
)

// FeatureCatalog provides read access to the per-plan feature definitions.
// Implemented by the GORM repository directly, or by the redis cache
// wrapping it. Correctness never depends on cache freshness: the cache is
// invalidated explicitly on reseed.
type FeatureCatalog interface {
	GetByPlan(ctx context.Context, plan tier.Plan) ([]*tier.FeatureDefinition, error)
}
