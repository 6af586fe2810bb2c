// Package mail sends transactional email over SMTP. Sending is best-effort:
// callers that only trigger email as a side effect log failures instead of
// rolling back their own state.
package mail

import (
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/isdelr/mylibrary-be/internal/logger"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends email through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    logger.Component("mailer"),
	}
}

// Send delivers a single HTML email to one recipient.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return err
	}
	m.log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}
