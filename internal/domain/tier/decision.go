package tier

import (
	"fmt"
	"math"
)

// Decision is the outcome of a hard entitlement check for one feature.
// A negative decision is a normal result carrying a reason, not an error.
type Decision struct {
	Feature           Feature
	AccessGranted     bool
	FeatureAvailable  bool
	UsageWithinLimits bool
	CurrentUsage      uint
	Limit             *uint
	Reason            string
	UpgradePrompt     string
}

// UsageCheck is the outcome of the softer pre-write guard: the operation
// may proceed, but once usage crosses UsageWarningRatio of the limit the
// check carries a human-readable warning and an upgrade prompt.
type UsageCheck struct {
	Feature       Feature
	CanProceed    bool
	WarningActive bool
	Warning       string
	UpgradePrompt string
	CurrentUsage  uint
	Limit         *uint
}

// Decide evaluates the entitlement decision table for a feature, first
// match wins:
//
//  1. feature unknown or not enabled for the tier -> deny, not available
//  2. no limit (unlimited)                        -> allow
//  3. usage >= limit                              -> deny, limit reached
//  4. otherwise                                   -> allow
func (s Status) Decide(f Feature) Decision {
	d := Decision{Feature: f}

	grant, known := s.Features[f]
	if !known || !grant.Enabled {
		d.Reason = fmt.Sprintf("feature %q is not available for your tier", f)
		d.UpgradePrompt = s.upgradePrompt(f)
		return d
	}

	d.FeatureAvailable = true
	d.CurrentUsage = s.Usage[f]
	d.Limit = grant.Limit

	if grant.Limit == nil {
		d.AccessGranted = true
		d.UsageWithinLimits = true
		return d
	}

	if d.CurrentUsage >= *grant.Limit {
		d.Reason = fmt.Sprintf("usage limit exceeded: %s limit reached (%d/%d)", f, d.CurrentUsage, *grant.Limit)
		d.UpgradePrompt = s.upgradePrompt(f)
		return d
	}

	d.AccessGranted = true
	d.UsageWithinLimits = true
	return d
}

// CheckUsage evaluates the warning-mode guard for a feature. Unlike Decide
// it never blocks an operation that is still under the limit; it only
// annotates it once usage reaches floor(UsageWarningRatio * limit).
func (s Status) CheckUsage(f Feature) UsageCheck {
	c := UsageCheck{Feature: f}

	grant, known := s.Features[f]
	if !known || !grant.Enabled {
		c.Warning = fmt.Sprintf("feature %q is not available for your tier", f)
		c.UpgradePrompt = s.upgradePrompt(f)
		return c
	}

	c.CurrentUsage = s.Usage[f]
	c.Limit = grant.Limit

	if grant.Limit == nil {
		c.CanProceed = true
		return c
	}

	limit := *grant.Limit
	if c.CurrentUsage >= limit {
		c.Warning = fmt.Sprintf("usage limit exceeded: %s limit reached (%d/%d)", f, c.CurrentUsage, limit)
		c.UpgradePrompt = s.upgradePrompt(f)
		return c
	}

	c.CanProceed = true
	if c.CurrentUsage >= WarningThreshold(limit) {
		c.WarningActive = true
		c.Warning = fmt.Sprintf("you are approaching your %s limit (%d/%d)", f, c.CurrentUsage, limit)
		c.UpgradePrompt = s.upgradePrompt(f)
	}
	return c
}

// WarningThreshold returns floor(UsageWarningRatio * limit), the counter
// value at which warnings start.
func WarningThreshold(limit uint) uint {
	return uint(math.Floor(UsageWarningRatio * float64(limit)))
}

func (s Status) upgradePrompt(f Feature) string {
	if s.Plan.IsPremium() {
		return ""
	}
	return fmt.Sprintf("Upgrade to premium for unlimited %s and full access to analytics and export.", f)
}
