package tier

import (
	"fmt"
	"time"
)

// UsageRecord tracks the running counter of a user for a single feature.
// Counters are mutated by feature-consuming operations and are never reset
// by a timer; history windows are a reporting concern layered on top.
type UsageRecord struct {
	id           uint
	userID       uint
	feature      Feature
	currentUsage uint
	usageLimit   *uint
	lastResetAt  time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUsageRecord creates a fresh usage record with a zero counter.
func NewUsageRecord(userID uint, feature Feature, limit *uint) (*UsageRecord, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}

	now := time.Now().UTC()
	return &UsageRecord{
		userID:      userID,
		feature:     feature,
		usageLimit:  limit,
		lastResetAt: now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructUsageRecord reconstructs a usage record from persistence.
func ReconstructUsageRecord(
	id, userID uint,
	feature Feature,
	currentUsage uint,
	usageLimit *uint,
	lastResetAt, createdAt, updatedAt time.Time,
) (*UsageRecord, error) {
	if id == 0 {
		return nil, fmt.Errorf("usage record ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !feature.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}

	return &UsageRecord{
		id:           id,
		userID:       userID,
		feature:      feature,
		currentUsage: currentUsage,
		usageLimit:   usageLimit,
		lastResetAt:  lastResetAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the record ID.
func (u *UsageRecord) ID() uint { return u.id }

// UserID returns the owning user ID.
func (u *UsageRecord) UserID() uint { return u.userID }

// Feature returns the feature name.
func (u *UsageRecord) Feature() Feature { return u.feature }

// CurrentUsage returns the running counter. Never negative.
func (u *UsageRecord) CurrentUsage() uint { return u.currentUsage }

// UsageLimit returns the limit snapshot taken at the last counter write.
func (u *UsageRecord) UsageLimit() *uint { return u.usageLimit }

// LastResetAt returns when the counter was last reset.
func (u *UsageRecord) LastResetAt() time.Time { return u.lastResetAt }

// CreatedAt returns the creation timestamp.
func (u *UsageRecord) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last update timestamp.
func (u *UsageRecord) UpdatedAt() time.Time { return u.updatedAt }
