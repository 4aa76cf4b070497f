package usecases

import (
	"context"
	"fmt"

	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/logger"
)

// ResolveTierStatusUseCase computes the authoritative point-in-time tier
// status of a user: plan, expiration and grace state, merged feature
// grants, and current usage counters. No side effects; the result is never
// cached across requests so it always reflects the latest usage.
type ResolveTierStatusUseCase struct {
	accounts account.Repository
	catalog  FeatureCatalog
	usage    tier.UsageRepository
	logger   logger.Interface
}

// NewResolveTierStatusUseCase creates a new ResolveTierStatusUseCase.
func NewResolveTierStatusUseCase(
	accounts account.Repository,
	catalog FeatureCatalog,
	usage tier.UsageRepository,
	log logger.Interface,
) *ResolveTierStatusUseCase {
	return &ResolveTierStatusUseCase{
		accounts: accounts,
		catalog:  catalog,
		usage:    usage,
		logger:   log,
	}
}

// Execute resolves the tier status for a user. Fails with
// account.ErrAccountNotFound when the account does not exist.
func (uc *ResolveTierStatusUseCase) Execute(ctx context.Context, userID uint) (tier.Status, error) {
	st, _, err := uc.Resolve(ctx, userID)
	return st, err
}

// Resolve is Execute plus the loaded account, for use cases that also need
// the recipient identity (notifications) without a second fetch.
func (uc *ResolveTierStatusUseCase) Resolve(ctx context.Context, userID uint) (tier.Status, *account.Account, error) {
	acct, err := uc.accounts.GetByID(ctx, userID)
	if err != nil {
		return tier.Status{}, nil, fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if acct == nil {
		return tier.Status{}, nil, account.ErrAccountNotFound
	}

	defs, err := uc.catalog.GetByPlan(ctx, acct.Plan())
	if err != nil {
		return tier.Status{}, nil, fmt.Errorf("failed to load feature definitions for plan %s: %w", acct.Plan(), err)
	}

	usages, err := uc.usage.GetByUser(ctx, userID)
	if err != nil {
		return tier.Status{}, nil, fmt.Errorf("failed to load usage records for user %d: %w", userID, err)
	}

	st := tier.ComputeStatus(acct.Plan(), acct.ExpiresAt(), acct.Active(), defs, usages, biztime.NowUTC())
	return st, acct, nil
}
