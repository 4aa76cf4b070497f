package account

import (
	"context"
	"time"
)

// Repository defines persistence operations for subscription accounts.
type Repository interface {
	// GetByID retrieves an account by ID. Returns nil, nil when the
	// account does not exist.
	GetByID(ctx context.Context, id uint) (*Account, error)

	// Update persists the mutable subscription fields of an account.
	Update(ctx context.Context, a *Account) error

	// FindDowngradeCandidates retrieves active premium accounts whose
	// expiration is before the cutoff (expiration + grace elapsed), in a
	// bounded batch ordered by expiration. The downgrade write clears the
	// expiration, so already-downgraded accounts no longer match.
	FindDowngradeCandidates(ctx context.Context, cutoff time.Time, limit int) ([]*Account, error)

	// FindExpiringBetween retrieves active premium accounts whose
	// expiration falls inside (from, to].
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*Account, error)
}
