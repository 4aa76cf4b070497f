// Package account defines the subscription account aggregate: the per-user
// subscription plan, its expiration clock, and the lifecycle transitions
// the engine is allowed to perform on it.
package account

import (
	"fmt"
	"time"

	"stockpilot/internal/domain/tier"
)

// Account is the subscription account aggregate root. Owned by the
// user-identity subsystem; this engine mutates only the subscription
// fields (downgrade, externally-supplied plan changes).
type Account struct {
	id        uint
	email     string
	name      string
	plan      tier.Plan
	expiresAt *time.Time
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewAccount creates a new account on the free plan.
func NewAccount(email, name string) (*Account, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := time.Now().UTC()
	return &Account{
		email:     email,
		name:      name,
		plan:      tier.PlanFree,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructAccount reconstructs an account from persistence.
func ReconstructAccount(
	id uint,
	email, name string,
	plan tier.Plan,
	expiresAt *time.Time,
	active bool,
	createdAt, updatedAt time.Time,
) (*Account, error) {
	if id == 0 {
		return nil, fmt.Errorf("account ID cannot be zero")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid subscription plan: %s", plan)
	}

	return &Account{
		id:        id,
		email:     email,
		name:      name,
		plan:      plan,
		expiresAt: expiresAt,
		active:    active,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the account ID.
func (a *Account) ID() uint { return a.id }

// Email returns the account email.
func (a *Account) Email() string { return a.email }

// Name returns the display name.
func (a *Account) Name() string { return a.name }

// Plan returns the current subscription plan.
func (a *Account) Plan() tier.Plan { return a.plan }

// ExpiresAt returns the subscription expiration, nil for free accounts.
func (a *Account) ExpiresAt() *time.Time { return a.expiresAt }

// Active reports whether the account is active.
func (a *Account) Active() bool { return a.active }

// CreatedAt returns the creation timestamp.
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last update timestamp.
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

// IsPremium reports whether the account is on the premium plan.
func (a *Account) IsPremium() bool { return a.plan.IsPremium() }

// ChangePlan applies an externally-initiated plan change (upgrade, renewal,
// manual intervention). Premium requires an expiration in the future; a
// change to free clears the expiration clock.
func (a *Account) ChangePlan(next tier.Plan, expiresAt *time.Time, now time.Time) error {
	if !next.IsValid() {
		return fmt.Errorf("invalid subscription plan: %s", next)
	}
	if next.IsPremium() {
		if expiresAt == nil {
			return fmt.Errorf("premium plan requires an expiration date")
		}
		if !expiresAt.After(now) {
			return fmt.Errorf("expiration date must be in the future")
		}
		a.expiresAt = expiresAt
	} else {
		a.expiresAt = nil
	}
	a.plan = next
	a.updatedAt = now
	return nil
}

// Downgrade forcibly moves a premium account to free, clearing the
// expiration clock. The caller is responsible for the grace-window
// predicate; re-downgrading a free account is rejected so batch retries
// stay observable.
func (a *Account) Downgrade(now time.Time) error {
	if !a.plan.IsPremium() {
		return ErrNotPremium
	}
	a.plan = tier.PlanFree
	a.expiresAt = nil
	a.updatedAt = now
	return nil
}

// PastGracePeriod reports whether the account's expiration plus the grace
// window is behind now. Free accounts and accounts without an expiration
// are never past grace.
func (a *Account) PastGracePeriod(now time.Time) bool {
	if !a.plan.IsPremium() || a.expiresAt == nil {
		return false
	}
	return now.After(a.expiresAt.Add(tier.GracePeriod))
}
