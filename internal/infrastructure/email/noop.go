package email

import (
	"context"
	"time"

	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

// NoopDispatcher logs intents without delivering anything. Used when email
// is disabled in configuration so the lifecycle jobs still run end to end.
type NoopDispatcher struct {
	logger logger.Interface
}

// NewNoopDispatcher creates a dispatcher that only logs.
func NewNoopDispatcher(logger logger.Interface) *NoopDispatcher {
	return &NoopDispatcher{logger: logger}
}

func (d *NoopDispatcher) TierChanged(ctx context.Context, to notification.Recipient, previous, next tier.Plan, reason tier.ChangeReason) error {
	d.logger.Infow("notification suppressed (email disabled)",
		"intent", "tier_changed",
		"user_id", to.UserID,
		"previous_plan", previous,
		"new_plan", next,
		"reason", reason,
	)
	return nil
}

func (d *NoopDispatcher) ExpirationWarning(ctx context.Context, to notification.Recipient, daysLeft int) error {
	d.logger.Infow("notification suppressed (email disabled)",
		"intent", "expiration_warning",
		"user_id", to.UserID,
		"days_left", daysLeft,
	)
	return nil
}

func (d *NoopDispatcher) GracePeriodStarted(ctx context.Context, to notification.Recipient, graceDeadline time.Time) error {
	d.logger.Infow("notification suppressed (email disabled)",
		"intent", "grace_period_started",
		"user_id", to.UserID,
		"grace_deadline", graceDeadline,
	)
	return nil
}

func (d *NoopDispatcher) UpgradePrompt(ctx context.Context, to notification.Recipient, feature tier.Feature) error {
	d.logger.Infow("notification suppressed (email disabled)",
		"intent", "upgrade_prompt",
		"user_id", to.UserID,
		"feature", feature,
	)
	return nil
}
