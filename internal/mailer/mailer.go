// Package mailer delivers verification and password-reset tokens
// out-of-band. Delivery is fire-and-forget from the caller's point of
// view: once a token is durably stored, a failed send must not fail the
// originating request.
package mailer

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"teamspace/internal/config"
)

// Sender dispatches a single message to an address.
type Sender interface {
	Send(to, subject, body string) error
}

// NewSender returns an SMTP sender when SMTP is configured, otherwise a
// log-only sender for development deployments.
func NewSender(cfg config.Config) Sender {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return &LogSender{}
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SMTPSender delivers mail through a configured SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// Send delivers one message. Errors are returned for the caller to log;
// they carry no token material.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogSender writes the message to the log instead of sending it. Used
// when no SMTP relay is configured.
type LogSender struct{}

// Send logs the outgoing message. The body (which contains the token) is
// logged at debug level only.
func (s *LogSender) Send(to, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail dispatch skipped, smtp not configured")
	logrus.WithField("body", body).Debug("undelivered mail body")
	return nil
}

// VerificationBody renders the email-verification message body.
func VerificationBody(token string) (subject, body string) {
	return "Verify your email address",
		"Use the following token to verify your email address:\n\n" + token
}

// PasswordResetBody renders the password-reset message body.
func PasswordResetBody(token string) (subject, body string) {
	return "Reset your password",
		"Use the following token to reset your password:\n\n" + token
}
