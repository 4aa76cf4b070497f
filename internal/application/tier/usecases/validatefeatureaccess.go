package usecases

import (
	"context"

	"stockpilot/internal/application/tier/dto"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/logger"
)

// ValidateFeatureAccessUseCase decides whether a user may perform a
// feature-gated operation right now. A negative decision is a normal
// result, not an error.
//
// When the tier status cannot be resolved (datastore failure) the use case
// fails closed: the error propagates and no access is granted. Callers that
// prefer availability over strict entitlement must make that trade
// explicitly at their own layer.
type ValidateFeatureAccessUseCase struct {
	resolver  *ResolveTierStatusUseCase
	auditSink audit.Sink
	logger    logger.Interface
}

// NewValidateFeatureAccessUseCase creates a new ValidateFeatureAccessUseCase.
func NewValidateFeatureAccessUseCase(
	resolver *ResolveTierStatusUseCase,
	auditSink audit.Sink,
	log logger.Interface,
) *ValidateFeatureAccessUseCase {
	return &ValidateFeatureAccessUseCase{
		resolver:  resolver,
		auditSink: auditSink,
		logger:    log,
	}
}

// Execute validates a single feature. Unknown feature names resolve to a
// "not available" denial rather than an error, preserving the closed-set
// fallback explicitly.
func (uc *ValidateFeatureAccessUseCase) Execute(ctx context.Context, userID uint, featureName string) (*dto.FeatureDecision, error) {
	st, _, err := uc.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := st.Decide(tier.Feature(featureName))
	uc.audit(ctx, userID, decision)

	return dto.NewFeatureDecision(decision), nil
}

// ExecuteBulk validates several features against one resolved status. The
// overall result is the logical AND of the individual grants; each
// sub-result is returned individually. The checks are read-only, so no
// shared transaction is needed.
func (uc *ValidateFeatureAccessUseCase) ExecuteBulk(ctx context.Context, userID uint, featureNames []string) (*dto.BulkDecision, error) {
	st, _, err := uc.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	bulk := &dto.BulkDecision{OverallGranted: true}
	for _, name := range featureNames {
		decision := st.Decide(tier.Feature(name))
		uc.audit(ctx, userID, decision)

		bulk.Results = append(bulk.Results, dto.NewFeatureDecision(decision))
		if !decision.AccessGranted {
			bulk.OverallGranted = false
		}
	}

	return bulk, nil
}

func (uc *ValidateFeatureAccessUseCase) audit(ctx context.Context, userID uint, d tier.Decision) {
	entry := audit.Entry{
		UserID:   userID,
		Action:   audit.ActionFeatureValidate,
		Resource: d.Feature.String(),
		Details: map[string]any{
			"access_granted":      d.AccessGranted,
			"feature_available":   d.FeatureAvailable,
			"usage_within_limits": d.UsageWithinLimits,
			"current_usage":       d.CurrentUsage,
			"reason":              d.Reason,
		},
		Success:    d.AccessGranted,
		OccurredAt: biztime.NowUTC(),
	}
	if err := uc.auditSink.Log(ctx, entry); err != nil {
		uc.logger.Warnw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"feature", d.Feature,
		)
	}
}
