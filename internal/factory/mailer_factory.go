package factory

import (
	"fmt"

	"github.com/mikey/contact-relay/internal/adapters/mailer"
	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// MailerFactory creates the outbound mailer and the relay's mail identity
type MailerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailerFactory creates a new mailer factory
func NewMailerFactory(cfg *config.Config, logger *zap.Logger) *MailerFactory {
	return &MailerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailer creates a mailer based on the configuration
func (f *MailerFactory) CreateMailer() (core.Mailer, error) {
	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return nil, err
	}

	switch mailCfg.Provider {
	case "smtp":
		return mailer.NewSMTPMailer(
			mailCfg.Host,
			mailCfg.Port,
			mailCfg.TLS,
			mailCfg.User,
			mailCfg.Pass,
			mailCfg.Timeout,
			f.logger,
		)
	case "log":
		f.logger.Warn("Using log mailer, messages will not be delivered")
		return mailer.NewLogMailer(f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", mailCfg.Provider)
	}
}

// CreateIdentity returns the system sender and inbox
func (f *MailerFactory) CreateIdentity() (core.MailIdentity, error) {
	mailCfg, err := f.cfg.GetMail()
	if err != nil {
		return core.MailIdentity{}, err
	}
	if mailCfg.From == "" {
		return core.MailIdentity{}, fmt.Errorf("mail.from or mail.user (EMAIL_USER) is required")
	}

	return core.MailIdentity{
		From: mailCfg.From,
		To:   mailCfg.To,
	}, nil
}
