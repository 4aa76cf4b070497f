package tier

import (
	"time"

	"stockpilot/internal/shared/biztime"
)

// Policy constants. Kept in one place so they can be promoted to
// data-driven values without touching call sites.
const (
	// GracePeriodDays is the window after subscription expiration during
	// which premium entitlements remain active before automatic downgrade.
	GracePeriodDays = 7

	// GracePeriod is GracePeriodDays as a duration.
	GracePeriod = GracePeriodDays * biztime.Day

	// UsageWarningRatio is the fraction of a limit at which pre-write
	// guards start returning a warning and an upgrade prompt.
	UsageWarningRatio = 0.8
)

// Status is the authoritative, point-in-time view of a user's tier:
// current plan, expiration state, grace-period state, and the merged
// feature grants and usage counters. Derived, never persisted, and
// computed fresh on every call so it always reflects the latest usage.
type Status struct {
	Plan                 Plan
	ExpiresAt            *time.Time
	Active               bool
	DaysUntilExpiration  *int
	GracePeriodActive    bool
	GracePeriodExpiresAt *time.Time
	Features             map[Feature]Grant
	Usage                map[Feature]uint
}

// ComputeStatus composes a Status from the subscription account fields, the
// plan's feature definitions, and the user's usage records. Pure with
// respect to its inputs; safe to call from hot request paths.
//
// Grace period derivation: a premium plan with a set expiration that is in
// the past but within GracePeriod of now is in grace. Free plans never
// carry expiration or grace state.
func ComputeStatus(plan Plan, expiresAt *time.Time, active bool, defs []*FeatureDefinition, usages []*UsageRecord, now time.Time) Status {
	st := Status{
		Plan:      plan,
		ExpiresAt: expiresAt,
		Active:    active,
		Features:  make(map[Feature]Grant, len(defs)),
		Usage:     make(map[Feature]uint, len(KnownFeatures)),
	}

	if expiresAt != nil {
		days := biztime.DaysUntilCeil(now, *expiresAt)
		st.DaysUntilExpiration = &days

		if plan.IsPremium() && now.After(*expiresAt) {
			deadline := expiresAt.Add(GracePeriod)
			if !now.After(deadline) {
				st.GracePeriodActive = true
				st.GracePeriodExpiresAt = &deadline
			}
		}
	}

	for _, def := range defs {
		st.Features[def.Feature()] = def.Grant()
	}

	// Features with no usage row default to a zero counter.
	for _, f := range KnownFeatures {
		st.Usage[f] = 0
	}
	for _, u := range usages {
		st.Usage[u.Feature()] = u.CurrentUsage()
	}

	return st
}

// GraceDeadline returns the grace-period deadline for a given expiration.
func GraceDeadline(expiresAt time.Time) time.Time {
	return expiresAt.Add(GracePeriod)
}

// WithinGrace reports whether now falls inside the grace window that
// follows the given expiration.
func WithinGrace(expiresAt, now time.Time) bool {
	return now.After(expiresAt) && !now.After(GraceDeadline(expiresAt))
}
