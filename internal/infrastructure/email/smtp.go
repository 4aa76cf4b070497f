// Package email delivers tier lifecycle notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"stockpilot/internal/domain/notification"
	"stockpilot/internal/domain/tier"
	"stockpilot/internal/shared/biztime"
	"stockpilot/internal/shared/config"
	"stockpilot/internal/shared/logger"
)

// SMTPDispatcher implements notification.Dispatcher over SMTP.
type SMTPDispatcher struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

// NewSMTPDispatcher creates a new SMTP-backed notification dispatcher.
func NewSMTPDispatcher(cfg config.EmailConfig, logger logger.Interface) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (d *SMTPDispatcher) TierChanged(ctx context.Context, to notification.Recipient, previous, next tier.Plan, reason tier.ChangeReason) error {
	subject := "Your plan has changed"
	if next.IsPremium() {
		subject = "Welcome to premium"
	}

	return d.send(ctx, to, subject, "tier_changed", map[string]any{
		"Name":         displayName(to),
		"PreviousPlan": previous.String(),
		"NewPlan":      next.String(),
		"Downgraded":   previous.IsPremium() && !next.IsPremium(),
		"BaseURL":      d.cfg.BaseURL,
	})
}

func (d *SMTPDispatcher) ExpirationWarning(ctx context.Context, to notification.Recipient, daysLeft int) error {
	subject := fmt.Sprintf("Your subscription expires in %d days", daysLeft)
	if daysLeft == 1 {
		subject = "Your subscription expires tomorrow"
	}

	return d.send(ctx, to, subject, "expiration_warning", map[string]any{
		"Name":     displayName(to),
		"DaysLeft": daysLeft,
		"BaseURL":  d.cfg.BaseURL,
	})
}

func (d *SMTPDispatcher) GracePeriodStarted(ctx context.Context, to notification.Recipient, graceDeadline time.Time) error {
	return d.send(ctx, to, "Your subscription has expired", "grace_period", map[string]any{
		"Name":          displayName(to),
		"GraceDeadline": biztime.FormatTimestamp(graceDeadline),
		"BaseURL":       d.cfg.BaseURL,
	})
}

func (d *SMTPDispatcher) UpgradePrompt(ctx context.Context, to notification.Recipient, feature tier.Feature) error {
	return d.send(ctx, to, "You're approaching your plan limit", "upgrade_prompt", map[string]any{
		"Name":    displayName(to),
		"Feature": feature.String(),
		"BaseURL": d.cfg.BaseURL,
	})
}

func (d *SMTPDispatcher) send(ctx context.Context, to notification.Recipient, subject, templateName string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrDeliveryFailed, err)
	}

	plain, html, err := renderBodies(templateName, data)
	if err != nil {
		return fmt.Errorf("%w: %v", notification.ErrDeliveryFailed, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", d.cfg.FromAddress, d.cfg.FromName)
	m.SetHeader("To", to.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plain)
	m.AddAlternative("text/html", html)

	if err := d.dialer.DialAndSend(m); err != nil {
		d.logger.Warnw("failed to send email",
			"template", templateName,
			"to", to.Email,
			"error", err,
		)
		return fmt.Errorf("%w: %v", notification.ErrDeliveryFailed, err)
	}

	d.logger.Debugw("email sent", "template", templateName, "user_id", to.UserID)
	return nil
}

func displayName(to notification.Recipient) string {
	if to.Name != "" {
		return to.Name
	}
	return to.Email
}
