package usecases_test

import (
	"context"
	"errors"
	"testing"

	"stockpilot/internal/application/tier/testutil"
	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
)

func TestGetUsageSummary(t *testing.T) {
	accounts := testutil.NewMockAccountRepository()
	catalog := testutil.NewMockFeatureCatalog()
	usage := testutil.NewMockUsageRepository()
	seedFreeCatalog(t, catalog)

	accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	usage.SetUsage(1, tier.FeatureProducts, 12)
	usage.SetUsage(1, tier.FeatureCategories, 3)

	uc := usecases.NewGetUsageSummaryUseCase(accounts, catalog, usage, testutil.NewMockLogger())
	summary, err := uc.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if summary.Plan != "free" {
		t.Errorf("expected free plan, got %s", summary.Plan)
	}
	if len(summary.Items) != len(tier.KnownFeatures) {
		t.Fatalf("expected one item per defined feature, got %d", len(summary.Items))
	}

	byFeature := make(map[string]uint, len(summary.Items))
	for _, item := range summary.Items {
		byFeature[item.Feature] = item.CurrentUsage
	}
	if byFeature["products"] != 12 {
		t.Errorf("expected products usage 12, got %d", byFeature["products"])
	}
	if byFeature["categories"] != 3 {
		t.Errorf("expected categories usage 3, got %d", byFeature["categories"])
	}
	// Features with no usage row report zero.
	if byFeature["import_batch"] != 0 {
		t.Errorf("expected import_batch usage 0, got %d", byFeature["import_batch"])
	}
}

func TestGetUsageSummary_AccountNotFound(t *testing.T) {
	uc := usecases.NewGetUsageSummaryUseCase(
		testutil.NewMockAccountRepository(),
		testutil.NewMockFeatureCatalog(),
		testutil.NewMockUsageRepository(),
		testutil.NewMockLogger(),
	)
	_, err := uc.Execute(context.Background(), 404)
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
