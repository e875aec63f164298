package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port of the relay.
	From string
	Auth smtp.Auth // Nil for an unauthenticated relay.
}

// Send delivers one message. net/smtp does not thread a context; the
// dispatcher's cancellation stops new sends rather than interrupting
// one in flight.
func (s *SMTPSender) Send(_ context.Context, recipient, subject, body string) error {
	var msg = strings.Join([]string{
		"From: " + s.From,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.Addr, s.Auth, s.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", recipient, err)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
// It stands in for a relay during development and tests.
type LogSender struct{}

func (LogSender) Send(_ context.Context, recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
		"bytes":     len(body),
	}).Info("would send mail")
	return nil
}
