// Package mail sends transactional email over SMTP.
package mail

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/config"
)

// Mailer sends login links and welcome mail. When SMTP is not
// configured it logs the link instead, which keeps local development
// working without a mail server.
type Mailer struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

// New creates a Mailer from SMTP configuration.
func New(cfg config.MailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
	}
}

// Enabled reports whether SMTP delivery is configured.
func (m *Mailer) Enabled() bool {
	return m.cfg.SMTPHost != "" && m.cfg.From != ""
}

// SendMagicLink emails a login link to the user.
func (m *Mailer) SendMagicLink(toEmail, displayName, loginURL string) error {
	if !m.Enabled() {
		m.logger.Warn("mail not configured, logging login link instead",
			"to", toEmail,
			"url", loginURL,
		)
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your Shelfmark sign-in link")
	msg.SetBody("text/html", m.buildMagicLinkBody(displayName, loginURL))

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("magic link email sent", "to", toEmail)
	return nil
}

// SendWelcome emails a greeting to a newly registered user.
// Failures are logged and swallowed; registration never fails on mail.
func (m *Mailer) SendWelcome(toEmail, displayName, handle string) {
	if !m.Enabled() {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Welcome to Shelfmark")
	msg.SetBody("text/html", fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome, %s</h2>
    <p>Your shelf lives at <strong>@%s</strong>. Find a book, mark it, and start tracking your reading.</p>
  </div>
</body>
</html>`, displayName, handle))

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		m.logger.Warn("welcome email failed", "to", toEmail, "error", err)
	}
}

func (m *Mailer) buildMagicLinkBody(displayName, loginURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f6f7fb; color: #1f2937;">
  <div style="max-width: 520px; margin: 24px auto; background: #ffffff; border-radius: 12px; border: 1px solid #e5e7eb; padding: 24px;">
    <h2>Sign in to Shelfmark</h2>
    <p>Hi %s, use the button below to sign in. The link works once and expires shortly.</p>
    <div style="text-align: center; margin: 24px 0;">
      <a href="%s" style="display: inline-block; padding: 12px 20px; background: #0f172a; color: #ffffff; text-decoration: none; border-radius: 8px; font-weight: bold;">Sign in</a>
    </div>
    <p style="font-size: 12px; color: #6b7280;">If you didn't request this, you can ignore this email.</p>
  </div>
</body>
</html>`, displayName, loginURL)
}
