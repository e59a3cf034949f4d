package services

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
)

type SMTPSender struct {
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
	UseTLS bool
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{ServerName: s.Host}
	// Implicit TLS when requested, otherwise go-mail negotiates STARTTLS.
	d.SSL = s.UseTLS

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
