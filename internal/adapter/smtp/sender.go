// Package smtp delivers alert emails over plain SMTP.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/dhakaquake/quake-monitor/internal/config"
	"github.com/dhakaquake/quake-monitor/internal/notify"
)

// Ensure Sender implements notify.Sender.
var _ notify.Sender = (*Sender)(nil)

// Sender sends plain-text mail through a single SMTP relay.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSender creates an SMTP sender from service configuration.
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// Send delivers one message. net/smtp has no context support; delivery is
// bounded by the relay's own connection timeouts.
func (s *Sender) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from, to, subject, body,
	))

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}
