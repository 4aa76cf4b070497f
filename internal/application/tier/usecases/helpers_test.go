package usecases_test

import (
	"testing"
	"time"

	"stockpilot/internal/application/tier/testutil"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
)

func uintPtr(v uint) *uint { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func futureExpiry() time.Time {
	return time.Now().UTC().Add(30 * 24 * time.Hour)
}

func mustAccount(t *testing.T, id uint, plan tier.Plan, expiresAt *time.Time) *account.Account {
	t.Helper()
	now := time.Now().UTC()
	acct, err := account.ReconstructAccount(id, "user@example.com", "Test User", plan, expiresAt, true, now, now)
	if err != nil {
		t.Fatalf("failed to build account: %v", err)
	}
	return acct
}

func mustDefinition(t *testing.T, plan tier.Plan, feature tier.Feature, limit *uint, enabled bool) *tier.FeatureDefinition {
	t.Helper()
	def, err := tier.NewFeatureDefinition(plan, feature, limit, enabled, "")
	if err != nil {
		t.Fatalf("failed to build definition: %v", err)
	}
	return def
}

// seedFreeCatalog registers the default free-plan grants.
func seedFreeCatalog(t *testing.T, catalog *testutil.MockFeatureCatalog) {
	t.Helper()
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureProducts, uintPtr(50), true))
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureCategories, uintPtr(10), true))
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureImportBatch, uintPtr(100), true))
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureNotifications, uintPtr(30), true))
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureAnalytics, nil, false))
	catalog.AddDefinition(mustDefinition(t, tier.PlanFree, tier.FeatureExport, nil, false))
}

// seedPremiumCatalog registers the default premium-plan grants.
func seedPremiumCatalog(t *testing.T, catalog *testutil.MockFeatureCatalog) {
	t.Helper()
	for _, f := range tier.KnownFeatures {
		catalog.AddDefinition(mustDefinition(t, tier.PlanPremium, f, nil, true))
	}
}

// waitFor polls cond until it returns true or the deadline passes. Used for
// assertions on fire-and-forget notification goroutines.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
