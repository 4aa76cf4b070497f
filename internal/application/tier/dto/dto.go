// Package dto defines the transport shapes of the tier application layer.
package dto

import (
	"time"

	"stockpilot/internal/domain/tier"
)

// FeatureGrant is the per-feature entitlement in a tier status response.
type FeatureGrant struct {
	Limit   *uint `json:"limit"`
	Enabled bool  `json:"enabled"`
}

// TierStatus is the resolved point-in-time tier view returned to callers.
type TierStatus struct {
	SubscriptionPlan      string                  `json:"subscription_plan"`
	SubscriptionExpiresAt *time.Time              `json:"subscription_expires_at,omitempty"`
	IsActive              bool                    `json:"is_active"`
	DaysUntilExpiration   *int                    `json:"days_until_expiration,omitempty"`
	GracePeriodActive     bool                    `json:"grace_period_active"`
	GracePeriodExpiresAt  *time.Time              `json:"grace_period_expires_at,omitempty"`
	TierFeatures          map[string]FeatureGrant `json:"tier_features"`
	CurrentUsage          map[string]uint         `json:"current_usage"`
}

// NewTierStatus converts a domain status into its transport shape.
func NewTierStatus(st tier.Status) *TierStatus {
	features := make(map[string]FeatureGrant, len(st.Features))
	for f, g := range st.Features {
		features[f.String()] = FeatureGrant{Limit: g.Limit, Enabled: g.Enabled}
	}
	usage := make(map[string]uint, len(st.Usage))
	for f, c := range st.Usage {
		usage[f.String()] = c
	}

	return &TierStatus{
		SubscriptionPlan:      st.Plan.String(),
		SubscriptionExpiresAt: st.ExpiresAt,
		IsActive:              st.Active,
		DaysUntilExpiration:   st.DaysUntilExpiration,
		GracePeriodActive:     st.GracePeriodActive,
		GracePeriodExpiresAt:  st.GracePeriodExpiresAt,
		TierFeatures:          features,
		CurrentUsage:          usage,
	}
}

// FeatureDecision is a single hard entitlement decision.
type FeatureDecision struct {
	Feature           string `json:"feature"`
	AccessGranted     bool   `json:"access_granted"`
	FeatureAvailable  bool   `json:"feature_available"`
	UsageWithinLimits bool   `json:"usage_within_limits"`
	CurrentUsage      uint   `json:"current_usage"`
	Limit             *uint  `json:"limit"`
	Reason            string `json:"reason,omitempty"`
	UpgradePrompt     string `json:"upgrade_prompt,omitempty"`
}

// NewFeatureDecision converts a domain decision into its transport shape.
func NewFeatureDecision(d tier.Decision) *FeatureDecision {
	return &FeatureDecision{
		Feature:           d.Feature.String(),
		AccessGranted:     d.AccessGranted,
		FeatureAvailable:  d.FeatureAvailable,
		UsageWithinLimits: d.UsageWithinLimits,
		CurrentUsage:      d.CurrentUsage,
		Limit:             d.Limit,
		Reason:            d.Reason,
		UpgradePrompt:     d.UpgradePrompt,
	}
}

// BulkDecision composes multiple feature decisions. OverallGranted is the
// logical AND of the individual grants.
type BulkDecision struct {
	OverallGranted bool               `json:"overall_granted"`
	Results        []*FeatureDecision `json:"results"`
}

// UsageCheck is the warning-mode pre-write guard result.
type UsageCheck struct {
	Feature       string `json:"feature"`
	CanProceed    bool   `json:"can_proceed"`
	WarningActive bool   `json:"warning_active"`
	Warning       string `json:"warning,omitempty"`
	UpgradePrompt string `json:"upgrade_prompt,omitempty"`
	CurrentUsage  uint   `json:"current_usage"`
	Limit         *uint  `json:"limit"`
}

// NewUsageCheck converts a domain usage check into its transport shape.
func NewUsageCheck(c tier.UsageCheck) *UsageCheck {
	return &UsageCheck{
		Feature:       c.Feature.String(),
		CanProceed:    c.CanProceed,
		WarningActive: c.WarningActive,
		Warning:       c.Warning,
		UpgradePrompt: c.UpgradePrompt,
		CurrentUsage:  c.CurrentUsage,
		Limit:         c.Limit,
	}
}

// UsageSummaryItem is one feature row in the usage report.
type UsageSummaryItem struct {
	Feature      string     `json:"feature"`
	Enabled      bool       `json:"enabled"`
	CurrentUsage uint       `json:"current_usage"`
	Limit        *uint      `json:"limit"`
	LastResetAt  *time.Time `json:"last_reset_at,omitempty"`
}

// UsageSummary is the read-only usage report for a user.
type UsageSummary struct {
	UserID uint                `json:"user_id"`
	Plan   string              `json:"plan"`
	Items  []*UsageSummaryItem `json:"items"`
}

// PlanChangeResult reports an applied plan change.
type PlanChangeResult struct {
	UserID        uint       `json:"user_id"`
	PreviousPlan  string     `json:"previous_plan"`
	NewPlan       string     `json:"new_plan"`
	ChangeReason  string     `json:"change_reason"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	EffectiveDate time.Time  `json:"effective_date"`
}
