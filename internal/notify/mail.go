package notify

import (
	"gopkg.in/gomail.v2"
)

// MailSender delivers one HTML email. Credentials are injected at
// construction; their absence is a deployment problem surfaced on send, not
// validated up front.
type MailSender interface {
	Send(to, subject, html string) error
}

// SMTPMailSender delivers mail through an SMTP provider.
type SMTPMailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailSender creates a mail sender. The from address doubles as the
// SMTP username, matching the provider setup.
func NewSMTPMailSender(host string, port int, user, password string) *SMTPMailSender {
	return &SMTPMailSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

// Send delivers a single message.
func (s *SMTPMailSender) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	return s.dialer.DialAndSend(m)
}
