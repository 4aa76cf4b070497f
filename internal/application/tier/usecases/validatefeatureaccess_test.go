package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stockpilot/internal/application/tier/testutil"
	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/tier"
)

type validateFixture struct {
	accounts  *testutil.MockAccountRepository
	catalog   *testutil.MockFeatureCatalog
	usage     *testutil.MockUsageRepository
	auditSink *testutil.MockAuditSink
	uc        *usecases.ValidateFeatureAccessUseCase
}

func newValidateFixture(t *testing.T) *validateFixture {
	t.Helper()
	f := &validateFixture{
		accounts:  testutil.NewMockAccountRepository(),
		catalog:   testutil.NewMockFeatureCatalog(),
		usage:     testutil.NewMockUsageRepository(),
		auditSink: testutil.NewMockAuditSink(),
	}
	log := testutil.NewMockLogger()
	resolver := usecases.NewResolveTierStatusUseCase(f.accounts, f.catalog, f.usage, log)
	f.uc = usecases.NewValidateFeatureAccessUseCase(resolver, f.auditSink, log)
	return f
}

func TestValidateFeatureAccess_FreeUserAtProductLimit(t *testing.T) {
	f := newValidateFixture(t)
	seedFreeCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 50)

	decision, err := f.uc.Execute(context.Background(), 1, "products")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if decision.AccessGranted {
		t.Error("expected access denied at limit")
	}
	if !decision.FeatureAvailable {
		t.Error("products is available on the free plan, only the limit blocks it")
	}
	if decision.UsageWithinLimits {
		t.Error("usage is not within limits at 50/50")
	}
	if !strings.Contains(decision.Reason, "limit reached") {
		t.Errorf("expected reason to mention the limit, got %q", decision.Reason)
	}
	if decision.UpgradePrompt == "" {
		t.Error("expected an upgrade prompt for a free user at the limit")
	}
}

func TestValidateFeatureAccess_GrantedUnderLimit(t *testing.T) {
	f := newValidateFixture(t)
	seedFreeCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 49)

	decision, err := f.uc.Execute(context.Background(), 1, "products")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !decision.AccessGranted {
		t.Errorf("expected access granted at 49/50, reason: %s", decision.Reason)
	}
	if decision.Reason != "" {
		t.Errorf("granted decision must carry no reason, got %q", decision.Reason)
	}
}

func TestValidateFeatureAccess_UnknownFeatureDenied(t *testing.T) {
	f := newValidateFixture(t)
	seedFreeCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))

	decision, err := f.uc.Execute(context.Background(), 1, "teleportation")
	if err != nil {
		t.Fatalf("unknown feature must deny, not error: %v", err)
	}
	if decision.AccessGranted || decision.FeatureAvailable {
		t.Error("unknown feature must resolve to not available")
	}
}

func TestValidateFeatureAccess_FailsClosedOnResolverError(t *testing.T) {
	f := newValidateFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	f.catalog.GetError = errors.New("datastore unavailable")

	decision, err := f.uc.Execute(context.Background(), 1, "products")
	if err == nil {
		t.Fatal("expected resolver failure to propagate")
	}
	if decision != nil {
		t.Error("no decision may be returned when the status cannot be resolved")
	}
}

func TestValidateFeatureAccess_BulkIsLogicalAND(t *testing.T) {
	f := newValidateFixture(t)
	seedFreeCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))

	bulk, err := f.uc.ExecuteBulk(context.Background(), 1, []string{"products", "analytics"})
	if err != nil {
		t.Fatalf("ExecuteBulk failed: %v", err)
	}

	if len(bulk.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(bulk.Results))
	}
	if !bulk.Results[0].AccessGranted {
		t.Error("products should be granted under limit")
	}
	if bulk.Results[1].AccessGranted {
		t.Error("analytics is disabled on free and must be denied")
	}
	if bulk.OverallGranted {
		t.Error("overall result must be false when any feature is denied")
	}
}

func TestValidateFeatureAccess_BulkAllGranted(t *testing.T) {
	f := newValidateFixture(t)
	seedPremiumCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 2, tier.PlanPremium, timePtr(futureExpiry())))

	bulk, err := f.uc.ExecuteBulk(context.Background(), 2, []string{"products", "analytics", "export"})
	if err != nil {
		t.Fatalf("ExecuteBulk failed: %v", err)
	}
	if !bulk.OverallGranted {
		t.Error("premium user must be granted every feature")
	}
}

func TestValidateFeatureAccess_AuditsEachDecision(t *testing.T) {
	f := newValidateFixture(t)
	seedFreeCatalog(t, f.catalog)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 50)

	if _, err := f.uc.Execute(context.Background(), 1, "products"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	entries := f.auditSink.EntriesFor(1, audit.ActionFeatureValidate)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Success {
		t.Error("audit entry for a denial must record success=false")
	}
	if entries[0].Resource != "products" {
		t.Errorf("expected resource products, got %s", entries[0].Resource)
	}
}
