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
	"stockpilot/internal/shared/goroutine"
	"stockpilot/internal/shared/logger"
)

// DefaultDowngradeBatchSize bounds one downgrade sweep.
const DefaultDowngradeBatchSize = 200

// DowngradeExpiredUseCase finds premium accounts whose grace period has
// elapsed and downgrades them to free: the plan flips, the expiration
// clock is cleared, a tier history row is appended, and the user is
// notified asynchronously.
//
// The selection predicate (expiration + grace < now) combined with the
// write clearing the expiration makes re-runs idempotent: an account
// downgraded once no longer matches. One account's failure never aborts
// the batch; it is logged and audited as a failure and retried naturally
// on the next sweep.
type DowngradeExpiredUseCase struct {
	accounts   account.Repository
	history    tier.HistoryRepository
	dispatcher notification.Dispatcher
	auditSink  audit.Sink
	logger     logger.Interface
	batchSize  int
}

// NewDowngradeExpiredUseCase creates a new DowngradeExpiredUseCase.
func NewDowngradeExpiredUseCase(
	accounts account.Repository,
	history tier.HistoryRepository,
	dispatcher notification.Dispatcher,
	auditSink audit.Sink,
	log logger.Interface,
	batchSize int,
) *DowngradeExpiredUseCase {
	if batchSize <= 0 {
		batchSize = DefaultDowngradeBatchSize
	}
	return &DowngradeExpiredUseCase{
		accounts:   accounts,
		history:    history,
		dispatcher: dispatcher,
		auditSink:  auditSink,
		logger:     log,
		batchSize:  batchSize,
	}
}

// Execute runs one downgrade sweep and returns the number of accounts
// downgraded.
func (uc *DowngradeExpiredUseCase) Execute(ctx context.Context) (int, error) {
	now := biztime.NowUTC()
	cutoff := now.Add(-tier.GracePeriod)

	candidates, err := uc.accounts.FindDowngradeCandidates(ctx, cutoff, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find downgrade candidates: %w", err)
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	uc.logger.Infow("found accounts past grace period", "count", len(candidates))

	downgraded := 0
	for _, acct := range candidates {
		if err := uc.processAccount(ctx, acct, now); err != nil {
			uc.logger.Errorw("failed to downgrade account",
				"error", err,
				"user_id", acct.ID(),
			)
			uc.audit(ctx, acct.ID(), map[string]any{"error": err.Error()}, false)
			continue
		}
		downgraded++
	}

	return downgraded, nil
}

func (uc *DowngradeExpiredUseCase) processAccount(ctx context.Context, acct *account.Account, now time.Time) error {
	previous := acct.Plan()
	var expiredAt time.Time
	if acct.ExpiresAt() != nil {
		expiredAt = *acct.ExpiresAt()
	}

	if err := acct.Downgrade(now); err != nil {
		return fmt.Errorf("downgrade rejected: %w", err)
	}

	if err := uc.accounts.Update(ctx, acct); err != nil {
		return fmt.Errorf("failed to persist downgrade: %w", err)
	}

	notes := fmt.Sprintf("subscription expired %s, grace period of %d days elapsed",
		biztime.FormatTimestamp(expiredAt), tier.GracePeriodDays)
	entry, err := tier.NewHistory(acct.ID(), previous, tier.PlanFree, tier.ChangeReasonExpiration, now, notes)
	if err != nil {
		return fmt.Errorf("failed to build history entry: %w", err)
	}
	if err := uc.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append tier history: %w", err)
	}

	recipient := notification.Recipient{
		UserID: acct.ID(),
		Email:  acct.Email(),
		Name:   acct.Name(),
	}
	goroutine.SafeGo(uc.logger, "downgrade-notify", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.dispatcher.TierChanged(notifyCtx, recipient, previous, tier.PlanFree, tier.ChangeReasonExpiration); err != nil {
			uc.logger.Warnw("failed to send downgrade notification",
				"error", err,
				"user_id", recipient.UserID,
			)
		}
	})

	uc.audit(ctx, acct.ID(), map[string]any{
		"previous_plan": previous.String(),
		"new_plan":      tier.PlanFree.String(),
		"expired_at":    biztime.FormatTimestamp(expiredAt),
	}, true)

	uc.logger.Infow("account downgraded after grace period",
		"user_id", acct.ID(),
		"previous_plan", previous,
		"expired_at", expiredAt,
	)
	return nil
}

func (uc *DowngradeExpiredUseCase) audit(ctx context.Context, userID uint, details map[string]any, success bool) {
	entry := audit.Entry{
		UserID:     userID,
		Action:     audit.ActionAutoDowngrade,
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
