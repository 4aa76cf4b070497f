package usecases_test

import (
	"context"
	"errors"
	"testing"

	"stockpilot/internal/application/tier/testutil"
	"stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/account"
	"stockpilot/internal/domain/audit"
	"stockpilot/internal/domain/tier"
)

type planChangeFixture struct {
	accounts   *testutil.MockAccountRepository
	history    *testutil.MockHistoryRepository
	dispatcher *testutil.MockDispatcher
	auditSink  *testutil.MockAuditSink
	uc         *usecases.ApplyPlanChangeUseCase
}

func newPlanChangeFixture(t *testing.T) *planChangeFixture {
	t.Helper()
	f := &planChangeFixture{
		accounts:   testutil.NewMockAccountRepository(),
		history:    testutil.NewMockHistoryRepository(),
		dispatcher: testutil.NewMockDispatcher(),
		auditSink:  testutil.NewMockAuditSink(),
	}
	f.uc = usecases.NewApplyPlanChangeUseCase(f.accounts, f.history, f.dispatcher, f.auditSink, testutil.NewMockLogger())
	return f
}

func TestApplyPlanChange_Upgrade(t *testing.T) {
	f := newPlanChangeFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))
	expiresAt := futureExpiry()

	result, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{
		UserID:    1,
		Plan:      "premium",
		ExpiresAt: timePtr(expiresAt),
		Reason:    "upgrade",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.PreviousPlan != "free" || result.NewPlan != "premium" {
		t.Errorf("unexpected transition %s -> %s", result.PreviousPlan, result.NewPlan)
	}
	if result.ExpiresAt == nil || !result.ExpiresAt.Equal(expiresAt) {
		t.Errorf("expected expiration %v, got %v", expiresAt, result.ExpiresAt)
	}

	acct, _ := f.accounts.GetByID(context.Background(), 1)
	if acct.Plan() != tier.PlanPremium {
		t.Errorf("expected premium persisted, got %s", acct.Plan())
	}

	entries := f.history.EntriesFor(1)
	if len(entries) != 1 || entries[0].ChangeReason() != tier.ChangeReasonUpgrade {
		t.Errorf("expected one upgrade history entry, got %+v", entries)
	}

	audits := f.auditSink.EntriesFor(1, audit.ActionPlanChange)
	if len(audits) != 1 || !audits[0].Success {
		t.Errorf("expected one successful audit entry, got %+v", audits)
	}

	waitFor(t, func() bool {
		return len(f.dispatcher.MessagesFor(1)) == 1
	}, "expected a tier change notification")
}

func TestApplyPlanChange_RenewalExtendsExpiration(t *testing.T) {
	f := newPlanChangeFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanPremium, timePtr(futureExpiry())))
	renewedUntil := futureExpiry().Add(tier.GracePeriod)

	result, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{
		UserID:    1,
		Plan:      "premium",
		ExpiresAt: timePtr(renewedUntil),
		Reason:    "renewal",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ExpiresAt == nil || !result.ExpiresAt.Equal(renewedUntil) {
		t.Errorf("expected expiration %v, got %v", renewedUntil, result.ExpiresAt)
	}
}

func TestApplyPlanChange_ManualDowngradeClearsExpiration(t *testing.T) {
	f := newPlanChangeFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanPremium, timePtr(futureExpiry())))

	result, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{
		UserID: 1,
		Plan:   "free",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ChangeReason != "manual" {
		t.Errorf("empty reason must default to manual, got %s", result.ChangeReason)
	}
	if result.ExpiresAt != nil {
		t.Error("a change to free must clear the expiration")
	}
}

func TestApplyPlanChange_PremiumRequiresFutureExpiration(t *testing.T) {
	f := newPlanChangeFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))

	cases := []struct {
		name string
		cmd  usecases.ApplyPlanChangeCommand
	}{
		{"no expiration", usecases.ApplyPlanChangeCommand{UserID: 1, Plan: "premium"}},
		{"past expiration", usecases.ApplyPlanChangeCommand{UserID: 1, Plan: "premium", ExpiresAt: timePtr(daysAgo(1))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.uc.Execute(context.Background(), tc.cmd); err == nil {
				t.Error("expected rejection")
			}
		})
	}
	if len(f.history.Entries) != 0 {
		t.Error("rejected changes must not write history")
	}
}

func TestApplyPlanChange_InvalidInputs(t *testing.T) {
	f := newPlanChangeFixture(t)
	f.accounts.AddAccount(mustAccount(t, 1, tier.PlanFree, nil))

	if _, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{UserID: 1, Plan: "platinum"}); err == nil {
		t.Error("expected rejection of unknown plan")
	}
	if _, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{UserID: 1, Plan: "free", Reason: "because"}); err == nil {
		t.Error("expected rejection of unknown change reason")
	}
	_, err := f.uc.Execute(context.Background(), usecases.ApplyPlanChangeCommand{UserID: 42, Plan: "free"})
	if !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}
