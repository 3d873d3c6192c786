package mailer

import (
	"context"

	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// LogMailer writes outbound email to the log instead of sending it. Meant for
// local development without mail credentials.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new log mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the email and always succeeds
func (m *LogMailer) Send(ctx context.Context, email *core.OutboundEmail) error {
	m.logger.Info("Outbound email (not sent)",
		zap.String("from", email.From),
		zap.Strings("to", email.To),
		zap.String("reply_to", email.ReplyTo),
		zap.String("subject", email.Subject),
		zap.Int("body_length", len(email.Body)),
		zap.Any("headers", email.Headers))
	return nil
}
