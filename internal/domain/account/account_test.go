package account

import (
	"errors"
	"testing"
	"time"

	"stockpilot/internal/domain/tier"
)

func premiumAccount(t *testing.T, expiresAt time.Time) *Account {
	t.Helper()
	now := time.Now().UTC()
	a, err := ReconstructAccount(1, "owner@example.com", "Owner", tier.PlanPremium, &expiresAt, true, now, now)
	if err != nil {
		t.Fatalf("ReconstructAccount() unexpected error = %v", err)
	}
	return a
}

func TestNewAccount_StartsFree(t *testing.T) {
	a, err := NewAccount("owner@example.com", "Owner")
	if err != nil {
		t.Fatalf("NewAccount() unexpected error = %v", err)
	}
	if a.Plan() != tier.PlanFree {
		t.Errorf("Plan = %s, want free", a.Plan())
	}
	if a.ExpiresAt() != nil {
		t.Errorf("ExpiresAt = %v, want nil", a.ExpiresAt())
	}
	if !a.Active() {
		t.Error("Active = false, want true")
	}
}

func TestNewAccount_RequiresEmail(t *testing.T) {
	if _, err := NewAccount("", "Owner"); err == nil {
		t.Error("NewAccount() expected error for empty email, got nil")
	}
}

func TestDowngrade(t *testing.T) {
	now := time.Now().UTC()
	a := premiumAccount(t, now.Add(-10*24*time.Hour))

	if err := a.Downgrade(now); err != nil {
		t.Fatalf("Downgrade() unexpected error = %v", err)
	}
	if a.Plan() != tier.PlanFree {
		t.Errorf("Plan = %s, want free", a.Plan())
	}
	if a.ExpiresAt() != nil {
		t.Errorf("ExpiresAt = %v, want nil after downgrade", a.ExpiresAt())
	}

	// A second downgrade is rejected: the account is no longer premium.
	err := a.Downgrade(now)
	if !errors.Is(err, ErrNotPremium) {
		t.Errorf("second Downgrade() error = %v, want ErrNotPremium", err)
	}
}

func TestPastGracePeriod(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name      string
		account   func(t *testing.T) *Account
		want      bool
	}{
		{
			name: "expired 10 days ago is past grace",
			account: func(t *testing.T) *Account {
				return premiumAccount(t, now.Add(-10*24*time.Hour))
			},
			want: true,
		},
		{
			name: "expired 3 days ago is still in grace",
			account: func(t *testing.T) *Account {
				return premiumAccount(t, now.Add(-3*24*time.Hour))
			},
			want: false,
		},
		{
			name: "not yet expired",
			account: func(t *testing.T) *Account {
				return premiumAccount(t, now.Add(5*24*time.Hour))
			},
			want: false,
		},
		{
			name: "free account is never past grace",
			account: func(t *testing.T) *Account {
				a, err := NewAccount("owner@example.com", "Owner")
				if err != nil {
					t.Fatalf("NewAccount() unexpected error = %v", err)
				}
				return a
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account(t).PastGracePeriod(now); got != tt.want {
				t.Errorf("PastGracePeriod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChangePlan(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	t.Run("upgrade to premium requires future expiration", func(t *testing.T) {
		a, _ := NewAccount("owner@example.com", "Owner")

		if err := a.ChangePlan(tier.PlanPremium, nil, now); err == nil {
			t.Error("ChangePlan() expected error for nil expiration, got nil")
		}
		if err := a.ChangePlan(tier.PlanPremium, &past, now); err == nil {
			t.Error("ChangePlan() expected error for past expiration, got nil")
		}

		if err := a.ChangePlan(tier.PlanPremium, &future, now); err != nil {
			t.Fatalf("ChangePlan() unexpected error = %v", err)
		}
		if a.Plan() != tier.PlanPremium {
			t.Errorf("Plan = %s, want premium", a.Plan())
		}
		if a.ExpiresAt() == nil || !a.ExpiresAt().Equal(future) {
			t.Errorf("ExpiresAt = %v, want %v", a.ExpiresAt(), future)
		}
	})

	t.Run("change to free clears expiration", func(t *testing.T) {
		a := premiumAccount(t, future)

		if err := a.ChangePlan(tier.PlanFree, nil, now); err != nil {
			t.Fatalf("ChangePlan() unexpected error = %v", err)
		}
		if a.ExpiresAt() != nil {
			t.Errorf("ExpiresAt = %v, want nil", a.ExpiresAt())
		}
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		a, _ := NewAccount("owner@example.com", "Owner")
		if err := a.ChangePlan(tier.Plan("platinum"), nil, now); err == nil {
			t.Error("ChangePlan() expected error for unknown plan, got nil")
		}
	})
}
