package usecases

import (
	"context"
	"fmt"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/logger"
)

// TrackUsageUseCase adjusts a user's usage counter after a feature-consuming
// operation succeeds. The counter write is a single conditional update at
// the datastore, so two concurrent creations cannot both claim the last
// slot under a limit; decrements clamp at zero.
type TrackUsageUseCase struct {
	accounts  account.Repository
	catalog   FeatureCatalog
	usage     tier.UsageRepository
	auditSink audit.Sink
	logger    logger.Interface
}

// NewTrackUsageUseCase creates a new TrackUsageUseCase.
func NewTrackUsageUseCase(
	accounts account.Repository,
	catalog FeatureCatalog,
	usage tier.UsageRepository,
	auditSink audit.Sink,
	log logger.Interface,
) *TrackUsageUseCase {
	return &TrackUsageUseCase{
		accounts:  accounts,
		catalog:   catalog,
		usage:     usage,
		auditSink: auditSink,
		logger:    log,
	}
}

// Execute applies the delta and returns the new counter value. A positive
// delta that would push the counter past the plan's limit fails with
// tier.ErrUsageLimitExceeded.
func (uc *TrackUsageUseCase) Execute(ctx context.Context, userID uint, featureName string, delta int) (uint, error) {
	feature, err := tier.ParseFeature(featureName)
	if err != nil {
		return 0, err
	}

	acct, err := uc.accounts.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if acct == nil {
		return 0, account.ErrAccountNotFound
	}

	defs, err := uc.catalog.GetByPlan(ctx, acct.Plan())
	if err != nil {
		return 0, fmt.Errorf("failed to load feature definitions for plan %s: %w", acct.Plan(), err)
	}

	var grant *tier.Grant
	for _, def := range defs {
		if def.Feature() == feature {
			g := def.Grant()
			grant = &g
			break
		}
	}
	if grant == nil || !grant.Enabled {
		return 0, fmt.Errorf("%w: %s for plan %s", tier.ErrFeatureNotAvailable, feature, acct.Plan())
	}

	newUsage, err := uc.usage.ApplyDelta(ctx, userID, feature, delta, grant.Limit)
	uc.audit(ctx, userID, feature, delta, newUsage, err)
	if err != nil {
		return 0, err
	}

	return newUsage, nil
}

func (uc *TrackUsageUseCase) audit(ctx context.Context, userID uint, feature tier.Feature, delta int, newUsage uint, trackErr error) {
	entry := audit.Entry{
		UserID:   userID,
		Action:   audit.ActionUsageTrack,
		Resource: feature.String(),
		Details: map[string]any{
			"delta":     delta,
			"new_usage": newUsage,
		},
		Success:    trackErr == nil,
		OccurredAt: biztime.NowUTC(),
	}
	if trackErr != nil {
		entry.Details["error"] = trackErr.Error()
	}
	if err := uc.auditSink.Log(ctx, entry); err != nil {
		uc.logger.Warnw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"feature", feature,
		)
	}
}
