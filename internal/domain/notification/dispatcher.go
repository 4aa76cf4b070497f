// Package notification defines the contract for delivering tier lifecycle
// messages. Delivery transport (mail, SMS, chat) is an adapter concern;
// the engine only depends on this interface and treats every send as
// fire-and-forget: failures are logged and audited, never surfaced to the
// operation that triggered them.
package notification

import (
	"context"
	"errors"
	"time"

	"stockpilot/internal/domain/tier"
)

// ErrDeliveryFailed wraps transport errors. Always non-fatal; never
// retried within the same cycle.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Recipient identifies the user a message is delivered to.
type Recipient struct {
	UserID uint
	Email  string
	Name   string
}

// Dispatcher delivers the four lifecycle message intents.
type Dispatcher interface {
	// TierChanged informs the user their plan changed.
	TierChanged(ctx context.Context, to Recipient, previous, next tier.Plan, reason tier.ChangeReason) error

	// ExpirationWarning informs a premium user their subscription expires
	// in daysLeft days.
	ExpirationWarning(ctx context.Context, to Recipient, daysLeft int) error

	// GracePeriodStarted informs a user their subscription expired and
	// premium access continues until the grace deadline.
	GracePeriodStarted(ctx context.Context, to Recipient, graceDeadline time.Time) error

	// UpgradePrompt nudges a user approaching or at a feature limit.
	UpgradePrompt(ctx context.Context, to Recipient, feature tier.Feature) error
}
