package usecases

import (
	"context"
	"fmt"
	"time"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/logger"
)

// expirationWarningWindow is how far ahead the notification sweep looks
// for upcoming expirations.
const expirationWarningWindow = 7 * biztime.Day

// recentExpiryLookback is how far back the sweep looks for accounts whose
// expiration just passed, to announce the grace period exactly once per
// daily cycle.
const recentExpiryLookback = 24 * time.Hour

// NotifyExpiringUseCase runs the daily notification sweep: it warns
// premium accounts expiring within the next seven days with the exact day
// count, and sends a grace-period-activated message to accounts whose
// expiration fell within the last cycle and are still inside grace.
// Delivery failures are logged and audited per account, never retried
// within the same cycle, and never abort the sweep.
type NotifyExpiringUseCase struct {
	accounts   account.Repository
	dispatcher notification.Dispatcher
	auditSink  audit.Sink
	logger     logger.Interface
}

// NewNotifyExpiringUseCase creates a new NotifyExpiringUseCase.
func NewNotifyExpiringUseCase(
	accounts account.Repository,
	dispatcher notification.Dispatcher,
	auditSink audit.Sink,
	log logger.Interface,
) *NotifyExpiringUseCase {
	return &NotifyExpiringUseCase{
		accounts:   accounts,
		dispatcher: dispatcher,
		auditSink:  auditSink,
		logger:     log,
	}
}

// Execute runs one notification sweep and returns the number of messages
// dispatched.
func (uc *NotifyExpiringUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	sent := 0

	expiring, err := uc.accounts.FindExpiringBetween(ctx, now, now.Add(expirationWarningWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to find expiring accounts: %w", err)
	}

	for _, acct := range expiring {
		if acct.ExpiresAt() == nil {
			continue
		}
		daysLeft := biztime.DaysUntilCeil(now, *acct.ExpiresAt())
		recipient := recipientOf(acct)

		if err := uc.dispatcher.ExpirationWarning(ctx, recipient, daysLeft); err != nil {
			uc.logger.Warnw("failed to send expiration warning",
				"error", err,
				"user_id", acct.ID(),
				"days_left", daysLeft,
			)
			uc.audit(ctx, acct.ID(), audit.ActionExpirationNotice, map[string]any{
				"days_left": daysLeft,
				"error":     err.Error(),
			}, false)
			continue
		}

		uc.audit(ctx, acct.ID(), audit.ActionExpirationNotice, map[string]any{
			"days_left": daysLeft,
		}, true)
		sent++
	}

	recentlyExpired, err := uc.accounts.FindExpiringBetween(ctx, now.Add(-recentExpiryLookback), now)
	if err != nil {
		return sent, fmt.Errorf("failed to find recently expired accounts: %w", err)
	}

	for _, acct := range recentlyExpired {
		if acct.ExpiresAt() == nil || !tier.WithinGrace(*acct.ExpiresAt(), now) {
			continue
		}
		deadline := tier.GraceDeadline(*acct.ExpiresAt())
		recipient := recipientOf(acct)

		if err := uc.dispatcher.GracePeriodStarted(ctx, recipient, deadline); err != nil {
			uc.logger.Warnw("failed to send grace period notification",
				"error", err,
				"user_id", acct.ID(),
			)
			uc.audit(ctx, acct.ID(), audit.ActionGracePeriodNotice, map[string]any{
				"grace_deadline": biztime.FormatTimestamp(deadline),
				"error":          err.Error(),
			}, false)
			continue
		}

		uc.audit(ctx, acct.ID(), audit.ActionGracePeriodNotice, map[string]any{
			"grace_deadline": biztime.FormatTimestamp(deadline),
		}, true)
		sent++
	}

	return sent, nil
}

func recipientOf(acct *account.Account) notification.Recipient {
	return notification.Recipient{
		UserID: acct.ID(),
		Email:  acct.Email(),
		Name:   acct.Name(),
	}
}

func (uc *NotifyExpiringUseCase) audit(ctx context.Context, userID uint, action string, details map[string]any, success bool) {
	entry := audit.Entry{
		UserID:     userID,
		Action:     action,
		Resource:   "subscription",
		Details:    details,
		Success:    success,
		OccurredAt: biztime.NowUTC(),
	}
	if err := uc.auditSink.Log(ctx, entry); err != nil {
		uc.logger.Warnw("failed to write audit entry",
			"error", err,
			"user_id", userID,
		)
	}
}
