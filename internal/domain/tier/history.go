package tier

import (
	"fmt"
	"time"
)

// ChangeReason explains why a plan change happened.
type ChangeReason string

const (
	ChangeReasonExpiration ChangeReason = "expiration"
	ChangeReasonUpgrade    ChangeReason = "upgrade"
	ChangeReasonRenewal    ChangeReason = "renewal"
	ChangeReasonManual     ChangeReason = "manual"
)

// ValidChangeReasons lists the accepted change reasons.
var ValidChangeReasons = map[ChangeReason]bool{
	ChangeReasonExpiration: true,
	ChangeReasonUpgrade:    true,
	ChangeReasonRenewal:    true,
	ChangeReasonManual:     true,
}

// IsValid reports whether the change reason is recognized.
func (r ChangeReason) IsValid() bool {
	return ValidChangeReasons[r]
}

// History is an append-only record of a plan change. Written on every
// automatic or manual transition and never mutated after insert.
type History struct {
	id            uint
	userID        uint
	previousPlan  Plan
	newPlan       Plan
	changeReason  ChangeReason
	effectiveDate time.Time
	notes         string
	createdAt     time.Time
}

// NewHistory creates a new tier history entry.
func NewHistory(userID uint, previous, next Plan, reason ChangeReason, effectiveDate time.Time, notes string) (*History, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !previous.IsValid() {
		return nil, fmt.Errorf("invalid previous plan: %s", previous)
	}
	if !next.IsValid() {
		return nil, fmt.Errorf("invalid new plan: %s", next)
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("invalid change reason: %s", reason)
	}
	if effectiveDate.IsZero() {
		return nil, fmt.Errorf("effective date cannot be zero")
	}

	return &History{
		userID:        userID,
		previousPlan:  previous,
		newPlan:       next,
		changeReason:  reason,
		effectiveDate: effectiveDate,
		notes:         notes,
		createdAt:     time.Now().UTC(),
	}, nil
}

// ReconstructHistory reconstructs a tier history entry from persistence.
func ReconstructHistory(
	id, userID uint,
	previous, next Plan,
	reason ChangeReason,
	effectiveDate time.Time,
	notes string,
	createdAt time.Time,
) (*History, error) {
	if id == 0 {
		return nil, fmt.Errorf("history ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	return &History{
		id:            id,
		userID:        userID,
		previousPlan:  previous,
		newPlan:       next,
		changeReason:  reason,
		effectiveDate: effectiveDate,
		notes:         notes,
		createdAt:     createdAt,
	}, nil
}

// ID returns the history entry ID.
func (h *History) ID() uint { return h.id }

// UserID returns the user the change applies to.
func (h *History) UserID() uint { return h.userID }

// PreviousPlan returns the plan before the change.
func (h *History) PreviousPlan() Plan { return h.previousPlan }

// NewPlan returns the plan after the change.
func (h *History) NewPlan() Plan { return h.newPlan }

// ChangeReason returns why the change happened.
func (h *History) ChangeReason() ChangeReason { return h.changeReason }

// EffectiveDate returns when the change took effect.
func (h *History) EffectiveDate() time.Time { return h.effectiveDate }

// Notes returns free-form operator notes.
func (h *History) Notes() string { return h.notes }

// CreatedAt returns the insert timestamp.
func (h *History) CreatedAt() time.Time { return h.createdAt }
