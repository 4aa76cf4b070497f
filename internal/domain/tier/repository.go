package tier

import (
	"context"
	"time"
)

// FeatureDefinitionRepository persists the per-plan feature catalog.
type FeatureDefinitionRepository interface {
	// GetByPlan retrieves all feature definitions for a plan.
	GetByPlan(ctx context.Context, plan Plan) ([]*FeatureDefinition, error)

	// Get retrieves a single (plan, feature) definition.
	// Returns nil, nil when the pair is not defined.
	Get(ctx context.Context, plan Plan, feature Feature) (*FeatureDefinition, error)

	// Upsert inserts or replaces a definition, keyed on (plan, feature).
	// Used by catalog seeding.
	Upsert(ctx context.Context, def *FeatureDefinition) error
}

// UsageRepository persists per-(user, feature) usage counters.
//
// ApplyDelta is the only mutation path for counters and must be atomic at
// the datastore: a single conditional update, never a read-modify-write
// pair, so two concurrent increments cannot both claim the last slot
// under a limit.
type UsageRepository interface {
	// GetByUser retrieves all usage records for a user.
	GetByUser(ctx context.Context, userID uint) ([]*UsageRecord, error)

	// Get retrieves a single usage record. Returns nil, nil when the user
	// has never consumed the feature.
	Get(ctx context.Context, userID uint, feature Feature) (*UsageRecord, error)

	// ApplyDelta atomically adjusts the counter and refreshes the limit
	// snapshot. Decrements clamp at zero. A positive delta that would push
	// the counter past a non-nil limit fails with ErrUsageLimitExceeded
	// and leaves the counter untouched. Returns the new counter value.
	ApplyDelta(ctx context.Context, userID uint, feature Feature, delta int, limit *uint) (uint, error)

	// Reset zeroes the counter and stamps lastResetAt.
	Reset(ctx context.Context, userID uint, feature Feature, at time.Time) error
}

// HistoryRepository persists the append-only tier change log.
type HistoryRepository interface {
	// Append inserts a history entry. Entries are never mutated.
	Append(ctx context.Context, h *History) error

	// ListByUser retrieves a user's plan change history, newest first.
	ListByUser(ctx context.Context, userID uint, limit int) ([]*History, error)
}
