package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MailIdentity is the system's own mailbox. Outbound mail is always sent from
// it; the submitter only ever appears as Reply-To.
type MailIdentity struct {
	From string
	To   []string
}

// Dispatcher performs the side effects of an accepted submission
type Dispatcher struct {
	mailer        Mailer
	store         MessageStore
	screener      Screener
	identity      MailIdentity
	subjectPrefix string
	logger        *zap.Logger
	now           func() time.Time
}

// NewDispatcher creates a new dispatcher. store and screener may be nil.
func NewDispatcher(
	mailer Mailer,
	store MessageStore,
	screener Screener,
	identity MailIdentity,
	subjectPrefix string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		mailer:        mailer,
		store:         store,
		screener:      screener,
		identity:      identity,
		subjectPrefix: subjectPrefix,
		logger:        logger,
		now:           time.Now,
	}
}

// StoreEnabled reports whether submissions are persisted
func (d *Dispatcher) StoreEnabled() bool {
	return d.store != nil
}

// Dispatch persists the submission (when a store is configured) and relays it
// by email. Store and mail steps are independent: if the send fails after the
// record was created, the record stays.
func (d *Dispatcher) Dispatch(ctx context.Context, sub Submission) (*DeliveryReceipt, error) {
	receipt := &DeliveryReceipt{}

	if d.store != nil {
		stored, err := d.store.Create(ctx, sub)
		if err != nil {
			d.logger.Error("Failed to store message",
				zap.Error(err),
				zap.String("email", sub.Email))
			return nil, &DeliveryFailure{Stage: "store", Err: err}
		}
		receipt.Stored = stored
		d.logger.Debug("Stored message", zap.String("id", stored.ID))
	}

	if d.screener != nil {
		result, err := d.screener.Screen(ctx, sub)
		if err != nil {
			d.logger.Warn("Screening failed, sending without annotations",
				zap.Error(err),
				zap.String("email", sub.Email))
		} else {
			receipt.Screening = result
		}
	}

	email := d.BuildEmail(sub, receipt.Screening)
	if err := d.mailer.Send(ctx, email); err != nil {
		d.logger.Error("Email send error",
			zap.Error(err),
			zap.String("reply_to", sub.Email),
			zap.Bool("stored", receipt.Stored != nil))
		return nil, &DeliveryFailure{Stage: "mail", Err: err}
	}
	receipt.SentAt = d.now()

	d.logger.Info("Message relayed",
		zap.String("reply_to", sub.Email),
		zap.Bool("stored", receipt.Stored != nil))

	return receipt, nil
}

// BuildEmail derives the outbound notification from a submission
func (d *Dispatcher) BuildEmail(sub Submission, screening *ScreeningResult) *OutboundEmail {
	to := d.identity.To
	if len(to) == 0 {
		to = []string{d.identity.From}
	}

	email := &OutboundEmail{
		From:    d.identity.From,
		To:      to,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New message from %s", sub.Name),
		Body:    sub.Message,
		Headers: make(map[string]string),
	}

	if screening != nil {
		email.Headers["X-Spam-Status"] = fmt.Sprintf("%t", screening.IsSpam)
		email.Headers["X-Spam-Score"] = fmt.Sprintf("%.4f", screening.Score)
		email.Headers["X-Spam-Reason"] = screening.Explanation
		if screening.IsSpam && d.subjectPrefix != "" {
			email.Subject = d.subjectPrefix + email.Subject
		}
	}

	return email
}

// ListAll returns every stored message, newest first
func (d *Dispatcher) ListAll(ctx context.Context) ([]StoredMessage, error) {
	if d.store == nil {
		return nil, ErrStoreDisabled
	}
	messages, err := d.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
