package usecases

import (
	"context"
	"fmt"

	"stockpilot/internal/application/tier/dto"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/logger"
)

// GetUsageSummaryUseCase produces the read-only usage report: every feature
// defined for the user's plan with its counter, limit, and last reset time.
// Reporting only; it never mutates counters.
type GetUsageSummaryUseCase struct {
	accounts account.Repository
	catalog  FeatureCatalog
	usage    tier.UsageRepository
	logger   logger.Interface
}

// NewGetUsageSummaryUseCase creates a new GetUsageSummaryUseCase.
func NewGetUsageSummaryUseCase(
	accounts account.Repository,
	catalog FeatureCatalog,
	usage tier.UsageRepository,
	log logger.Interface,
) *GetUsageSummaryUseCase {
	return &GetUsageSummaryUseCase{
		accounts: accounts,
		catalog:  catalog,
		usage:    usage,
		logger:   log,
	}
}

// Execute builds the usage summary for a user.
func (uc *GetUsageSummaryUseCase) Execute(ctx context.Context, userID uint) (*dto.UsageSummary, error) {
	acct, err := uc.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", userID, err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}

	defs, err := uc.catalog.GetByPlan(ctx, acct.Plan())
	if err != nil {
		return nil, fmt.Errorf("failed to load feature definitions for plan %s: %w", acct.Plan(), err)
	}

	records, err := uc.usage.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage records for user %d: %w", userID, err)
	}

	byFeature := make(map[tier.Feature]*tier.UsageRecord, len(records))
	for _, rec := range records {
		byFeature[rec.Feature()] = rec
	}

	summary := &dto.UsageSummary{
		UserID: userID,
		Plan:   acct.Plan().String(),
	}
	for _, def := range defs {
		item := &dto.UsageSummaryItem{
			Feature: def.Feature().String(),
			Enabled: def.Enabled(),
			Limit:   def.Limit(),
		}
		if rec, ok := byFeature[def.Feature()]; ok {
			item.CurrentUsage = rec.CurrentUsage()
			resetAt := rec.LastResetAt()
			item.LastResetAt = &resetAt
		}
		summary.Items = append(summary.Items, item)
	}

	return summary, nil
}
