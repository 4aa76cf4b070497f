package usecases

import (
	"context"
	"fmt"
	"time"

	"stockpilot/internal/application/tier/dto"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/goroutine"
	"stockpilot/internal/shared/logger"
)

// ApplyPlanChangeCommand carries an externally-initiated plan change.
type ApplyPlanChangeCommand struct {
	UserID    uint
	Plan      string
	ExpiresAt *time.Time
	Reason    string
	Notes     string
}

// ApplyPlanChangeUseCase applies a plan change supplied by the billing
// collaborator (upgrade, renewal) or an operator (manual). It writes the
// account, appends tier history, notifies the user asynchronously, and
// audits the transition. It is the only plan mutation path besides the
// automatic downgrade sweep.
type ApplyPlanChangeUseCase struct {
	accounts   account.Repository
	history    tier.HistoryRepository
	dispatcher notification.Dispatcher
	auditSink  audit.Sink
	logger     logger.Interface
}

// NewApplyPlanChangeUseCase creates a new ApplyPlanChangeUseCase.
func NewApplyPlanChangeUseCase(
	accounts account.Repository,
	history tier.HistoryRepository,
	dispatcher notification.Dispatcher,
	auditSink audit.Sink,
	log logger.Interface,
) *ApplyPlanChangeUseCase {
	return &ApplyPlanChangeUseCase{
		accounts:   accounts,
		history:    history,
		dispatcher: dispatcher,
		auditSink:  auditSink,
		logger:     log,
	}
}

// Execute applies the plan change and returns the transition summary.
func (uc *ApplyPlanChangeUseCase) Execute(ctx context.Context, cmd ApplyPlanChangeCommand) (*dto.PlanChangeResult, error) {
	next, err := tier.ParsePlan(cmd.Plan)
	if err != nil {
		return nil, err
	}

	reason := tier.ChangeReason(cmd.Reason)
	if cmd.Reason == "" {
		reason = tier.ChangeReasonManual
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("invalid change reason: %s", cmd.Reason)
	}

	acct, err := uc.accounts.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", cmd.UserID, err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}

	now := biztime.NowUTC()
	previous := acct.Plan()

	if err := acct.ChangePlan(next, cmd.ExpiresAt, now); err != nil {
		return nil, err
	}
	if err := uc.accounts.Update(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to persist plan change: %w", err)
	}

	entry, err := tier.NewHistory(acct.ID(), previous, next, reason, now, cmd.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to build history entry: %w", err)
	}
	if err := uc.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append tier history: %w", err)
	}

	recipient := notification.Recipient{
		UserID: acct.ID(),
		Email:  acct.Email(),
		Name:   acct.Name(),
	}
	goroutine.SafeGo(uc.logger, "plan-change-notify", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.dispatcher.TierChanged(notifyCtx, recipient, previous, next, reason); err != nil {
			uc.logger.Warnw("failed to send plan change notification",
				"error", err,
				"user_id", recipient.UserID,
			)
		}
	})

	auditEntry := audit.Entry{
		UserID:   acct.ID(),
		Action:   audit.ActionPlanChange,
		Resource: "subscription",
		Details: map[string]any{
			"previous_plan": previous.String(),
			"new_plan":      next.String(),
			"reason":        string(reason),
		},
		Success:    true,
		OccurredAt: now,
	}
	if err := uc.auditSink.Log(ctx, auditEntry); err != nil {
		uc.logger.Warnw("failed to write audit entry",
			"error", err,
			"user_id", acct.ID(),
		)
	}

	uc.logger.Infow("plan change applied",
		"user_id", acct.ID(),
		"previous_plan", previous,
		"new_plan", next,
		"reason", reason,
	)

	return &dto.PlanChangeResult{
		UserID:        acct.ID(),
		PreviousPlan:  previous.String(),
		NewPlan:       next.String(),
		ChangeReason:  string(reason),
		ExpiresAt:     acct.ExpiresAt(),
		EffectiveDate: now,
	}, nil
}
