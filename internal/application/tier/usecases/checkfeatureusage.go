package usecases

import (
	"context"
	"time"

	"stockpilot/internal/application/tier/dto"
	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/goroutine"
	"stockpilot/internal/shared/logger"
)

// CheckFeatureUsageUseCase is the softer pre-write guard: it never blocks
// an operation that is still under its limit, but annotates the result with
// a warning and an upgrade prompt once usage crosses the warning threshold.
// A triggered warning also dispatches an upgrade-prompt notification,
// fire-and-forget.
type CheckFeatureUsageUseCase struct {
	resolver   *ResolveTierStatusUseCase
	dispatcher notification.Dispatcher
	logger     logger.Interface
}

// NewCheckFeatureUsageUseCase creates a new CheckFeatureUsageUseCase.
func NewCheckFeatureUsageUseCase(
	resolver *ResolveTierStatusUseCase,
	dispatcher notification.Dispatcher,
	log logger.Interface,
) *CheckFeatureUsageUseCase {
	return &CheckFeatureUsageUseCase{
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Execute runs the warning-mode guard for one feature. Fails closed when
// the tier status cannot be resolved.
func (uc *CheckFeatureUsageUseCase) Execute(ctx context.Context, userID uint, featureName string) (*dto.UsageCheck, error) {
	st, acct, err := uc.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	feature := tier.Feature(featureName)
	check := st.CheckUsage(feature)

	if check.WarningActive && check.UpgradePrompt != "" {
		recipient := notification.Recipient{
			UserID: acct.ID(),
			Email:  acct.Email(),
			Name:   acct.Name(),
		}
		goroutine.SafeGo(uc.logger, "upgrade-prompt-notify", func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := uc.dispatcher.UpgradePrompt(notifyCtx, recipient, feature); err != nil {
				uc.logger.Warnw("failed to send upgrade prompt",
					"error", err,
					"user_id", recipient.UserID,
					"feature", feature,
				)
			}
		})
	}

	return dto.NewUsageCheck(check), nil
}
