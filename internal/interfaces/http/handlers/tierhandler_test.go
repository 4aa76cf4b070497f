package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appTestutil "stockpilot/internal/application/tier/testutil"
	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/interfaces/http/handlers/testutil"
)

type tierHandlerFixture struct {
	accounts   *appTestutil.MockAccountRepository
	catalog    *appTestutil.MockFeatureCatalog
	usage      *appTestutil.MockUsageRepository
	history    *appTestutil.MockHistoryRepository
	dispatcher *appTestutil.MockDispatcher
	auditSink  *appTestutil.MockAuditSink
	handler    *TierHandler
}

func uintPtr(v uint) *uint { return &v }

func mustTestAccount(t *testing.T, id uint, plan tier.Plan, expiresAt *time.Time) *account.Account {
	t.Helper()
	now := time.Now().UTC()
	acct, err := account.ReconstructAccount(id, "user@example.com", "Test User", plan, expiresAt, true, now, now)
	require.NoError(t, err)
	return acct
}

func mustTestDefinition(t *testing.T, id uint, plan tier.Plan, feature tier.Feature, limit *uint, enabled bool) *tier.FeatureDefinition {
	t.Helper()
	now := time.Now().UTC()
	def, err := tier.ReconstructFeatureDefinition(id, plan, feature, limit, enabled, "", now, now)
	require.NoError(t, err)
	return def
}

func newTierHandlerFixture(t *testing.T) *tierHandlerFixture {
	t.Helper()

	accounts := appTestutil.NewMockAccountRepository()
	catalog := appTestutil.NewMockFeatureCatalog()
	usage := appTestutil.NewMockUsageRepository()
	history := appTestutil.NewMockHistoryRepository()
	dispatcher := appTestutil.NewMockDispatcher()
	auditSink := appTestutil.NewMockAuditSink()
	log := appTestutil.NewMockLogger()

	catalog.AddDefinition(mustTestDefinition(t, 1, tier.PlanFree, tier.FeatureProducts, uintPtr(50), true))
	catalog.AddDefinition(mustTestDefinition(t, 2, tier.PlanFree, tier.FeatureCategories, uintPtr(10), true))
	catalog.AddDefinition(mustTestDefinition(t, 3, tier.PlanFree, tier.FeatureAnalytics, nil, false))

	resolveUC := usecases.NewResolveTierStatusUseCase(accounts, catalog, usage, log)
	validateUC := usecases.NewValidateFeatureAccessUseCase(resolveUC, auditSink, log)
	checkUC := usecases.NewCheckFeatureUsageUseCase(resolveUC, dispatcher, log)
	trackUC := usecases.NewTrackUsageUseCase(accounts, catalog, usage, auditSink, log)
	summaryUC := usecases.NewGetUsageSummaryUseCase(accounts, catalog, usage, log)

	return &tierHandlerFixture{
		accounts:   accounts,
		catalog:    catalog,
		usage:      usage,
		history:    history,
		dispatcher: dispatcher,
		auditSink:  auditSink,
		handler: NewTierHandler(
			resolveUC,
			validateUC,
			checkUC,
			trackUC,
			summaryUC,
			history,
			log,
		),
	}
}

func TestTierHandler_GetStatus(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 12)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tier/status", nil)
	testutil.SetAuthContext(c, 1)

	f.handler.GetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.True(t, resp.Success)

	var status struct {
		SubscriptionPlan string          `json:"subscription_plan"`
		IsActive         bool            `json:"is_active"`
		CurrentUsage     map[string]uint `json:"current_usage"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.Equal(t, "free", status.SubscriptionPlan)
	assert.True(t, status.IsActive)
	assert.Equal(t, uint(12), status.CurrentUsage["products"])
}

func TestTierHandler_GetStatus_Unauthenticated(t *testing.T) {
	f := newTierHandlerFixture(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tier/status", nil)

	f.handler.GetStatus(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTierHandler_GetStatus_AccountNotFound(t *testing.T) {
	f := newTierHandlerFixture(t)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tier/status", nil)
	testutil.SetAuthContext(c, 42)

	f.handler.GetStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTierHandler_ValidateFeature_Granted(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 10)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/features/validate", map[string]interface{}{"feature": "products"})
	testutil.SetAuthContext(c, 1)

	f.handler.ValidateFeature(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var decision struct {
		AccessGranted bool   `json:"access_granted"`
		Feature       string `json:"feature"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &decision))
	assert.True(t, decision.AccessGranted)
	assert.Equal(t, "products", decision.Feature)
}

func TestTierHandler_ValidateFeature_DeniedAtLimit(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 50)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/features/validate", map[string]interface{}{"feature": "products"})
	testutil.SetAuthContext(c, 1)

	f.handler.ValidateFeature(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var decision struct {
		AccessGranted bool   `json:"access_granted"`
		Reason        string `json:"reason"`
		UpgradePrompt string `json:"upgrade_prompt"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &decision))
	assert.False(t, decision.AccessGranted)
	assert.NotEmpty(t, decision.Reason)
	assert.NotEmpty(t, decision.UpgradePrompt)
}

func TestTierHandler_ValidateFeature_MissingFeature(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/features/validate", map[string]interface{}{})
	testutil.SetAuthContext(c, 1)

	f.handler.ValidateFeature(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTierHandler_ValidateFeaturesBulk(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/features/validate-bulk",
		map[string]interface{}{"features": []string{"products", "analytics"}})
	testutil.SetAuthContext(c, 1)

	f.handler.ValidateFeaturesBulk(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var bulk struct {
		OverallGranted bool `json:"overall_granted"`
		Results        []struct {
			Feature       string `json:"feature"`
			AccessGranted bool   `json:"access_granted"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &bulk))
	// Analytics is disabled on the free plan, so the AND fails.
	assert.False(t, bulk.OverallGranted)
	require.Len(t, bulk.Results, 2)
}

func TestTierHandler_TrackUsage(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 10)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/usage",
		map[string]interface{}{"feature": "products", "delta": 1})
	testutil.SetAuthContext(c, 1)

	f.handler.TrackUsage(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var result struct {
		CurrentUsage uint `json:"current_usage"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, uint(11), result.CurrentUsage)
}

func TestTierHandler_TrackUsage_LimitExceeded(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 50)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/usage",
		map[string]interface{}{"feature": "products", "delta": 1})
	testutil.SetAuthContext(c, 1)

	f.handler.TrackUsage(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTierHandler_CheckUsage_WarnsNearLimit(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 45)

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tier/features/check", map[string]interface{}{"feature": "products"})
	testutil.SetAuthContext(c, 1)

	f.handler.CheckUsage(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var check struct {
		CanProceed    bool `json:"can_proceed"`
		WarningActive bool `json:"warning_active"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.True(t, check.CanProceed)
	assert.True(t, check.WarningActive)
}

func TestTierHandler_GetUsageSummary(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))
	f.usage.SetUsage(1, tier.FeatureProducts, 12)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tier/usage", nil)
	testutil.SetAuthContext(c, 1)

	f.handler.GetUsageSummary(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var summary struct {
		UserID uint   `json:"user_id"`
		Plan   string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, uint(1), summary.UserID)
	assert.Equal(t, "free", summary.Plan)
}

func TestTierHandler_GetHistory(t *testing.T) {
	f := newTierHandlerFixture(t)
	f.accounts.AddAccount(mustTestAccount(t, 1, tier.PlanFree, nil))

	entry, err := tier.NewHistory(1, tier.PlanFree, tier.PlanPremium, tier.ChangeReasonUpgrade, time.Now().UTC(), "")
	require.NoError(t, err)
	require.NoError(t, f.history.Append(context.Background(), entry))

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tier/history", nil)
	testutil.SetAuthContext(c, 1)

	f.handler.GetHistory(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var payload struct {
		History []struct {
			NewPlan      string `json:"new_plan"`
			ChangeReason string `json:"change_reason"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	require.Len(t, payload.History, 1)
	assert.Equal(t, "premium", payload.History[0].NewPlan)
	assert.Equal(t, "upgrade", payload.History[0].ChangeReason)
}
