package services

import (
	"go.uber.org/zap"

	"horoscope/internal/logger"
)

type EmailSender interface {
	Send(to string, subject string, body string) error
}

// LogSender writes outgoing mail to the log instead of delivering it. It is
// used when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(to string, subject string, body string) error {
	logger.Named("mail").Info("email not delivered (no smtp configured)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
