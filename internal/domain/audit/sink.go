// Package audit defines the append-only audit sink contract. Every
// entitlement decision and lifecycle transition is recorded here,
// best-effort: a failed write is logged by the caller and never blocks
// the operation being audited.
package audit

import (
	"context"
	"time"
)

// Actions recorded by the engine.
const (
	ActionFeatureValidate   = "feature.validate"
	ActionUsageTrack        = "usage.track"
	ActionPlanChange        = "subscription.plan_change"
	ActionAutoDowngrade     = "subscription.auto_downgrade"
	ActionExpirationNotice  = "subscription.expiration_notice"
	ActionGracePeriodNotice = "subscription.grace_period_notice"
)

// Entry is a single audit record.
type Entry struct {
	UserID     uint
	Action     string
	Resource   string
	Details    map[string]any
	Success    bool
	OccurredAt time.Time
}

// Sink records audit entries. Implementations must be safe for
// concurrent use.
type Sink interface {
	Log(ctx context.Context, e Entry) error
}
