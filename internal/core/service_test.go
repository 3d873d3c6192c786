package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []*OutboundEmail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email *OutboundEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeStore struct {
	mu        sync.Mutex
	records   []StoredMessage
	createErr error
	listErr   error
}

func (s *fakeStore) Create(_ context.Context, sub Submission) (*StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	rec := StoredMessage{
		ID:        "id-1",
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	s.records = append(s.records, rec)
	return &rec, nil
}

func (s *fakeStore) ListAll(_ context.Context) ([]StoredMessage, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

type fakeScreener struct {
	result *ScreeningResult
	err    error
}

func (s *fakeScreener) Screen(_ context.Context, _ Submission) (*ScreeningResult, error) {
	return s.result, s.err
}

var (
	ann      = Submission{Name: "Ann", Email: "ann@x.com", Message: "hi"}
	identity = MailIdentity{From: "owner@gencorp.com"}
)

func TestDispatch_SendsOneEmail(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, nil, nil, identity, "", zap.NewNop())

	receipt, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	assert.Nil(t, receipt.Stored)
	assert.False(t, receipt.SentAt.IsZero())

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, "owner@gencorp.com", email.From)
	assert.Equal(t, []string{"owner@gencorp.com"}, email.To)
	assert.Equal(t, "ann@x.com", email.ReplyTo)
	assert.Equal(t, "New message from Ann", email.Subject)
	assert.Equal(t, "hi", email.Body)
	assert.Empty(t, email.Headers)
}

func TestDispatch_ExplicitInbox(t *testing.T) {
	mailer := &fakeMailer{}
	id := MailIdentity{From: "relay@gencorp.com", To: []string{"inbox@gencorp.com"}}
	d := NewDispatcher(mailer, nil, nil, id, "", zap.NewNop())

	_, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "relay@gencorp.com", mailer.sent[0].From)
	assert.Equal(t, []string{"inbox@gencorp.com"}, mailer.sent[0].To)
}

func TestDispatch_MailFailureIsGeneric(t *testing.T) {
	obsCore, logs := observer.New(zap.ErrorLevel)
	mailer := &fakeMailer{err: errors.New("535 5.7.8 Username and Password not accepted")}
	d := NewDispatcher(mailer, nil, nil, identity, "", zap.New(obsCore))

	receipt, err := d.Dispatch(context.Background(), ann)
	assert.Nil(t, receipt)
	require.Error(t, err)
	assert.True(t, IsDeliveryFailure(err))
	assert.Equal(t, DeliveryFailureMessage, err.Error())
	assert.NotContains(t, err.Error(), "535")
	assert.ErrorIs(t, err, mailer.err)

	assert.Equal(t, 1, logs.FilterMessage("Email send error").Len())
}

func TestDispatch_StoreFailureSkipsMail(t *testing.T) {
	mailer := &fakeMailer{}
	store := &fakeStore{createErr: errors.New("connection refused")}
	d := NewDispatcher(mailer, store, nil, identity, "", zap.NewNop())

	_, err := d.Dispatch(context.Background(), ann)
	require.Error(t, err)

	var df *DeliveryFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, "store", df.Stage)
	assert.Equal(t, DeliveryFailureMessage, err.Error())
	assert.Empty(t, mailer.sent)
}

func TestDispatch_StoredRecordSurvivesMailFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("timeout")}
	store := &fakeStore{}
	d := NewDispatcher(mailer, store, nil, identity, "", zap.NewNop())

	_, err := d.Dispatch(context.Background(), ann)
	require.Error(t, err)

	var df *DeliveryFailure
	require.True(t, errors.As(err, &df))
	assert.Equal(t, "mail", df.Stage)

	records, err := d.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDispatch_ReturnsStoredRecord(t *testing.T) {
	mailer := &fakeMailer{}
	store := &fakeStore{}
	d := NewDispatcher(mailer, store, nil, identity, "", zap.NewNop())
	require.True(t, d.StoreEnabled())

	receipt, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	require.NotNil(t, receipt.Stored)
	assert.Equal(t, "Ann", receipt.Stored.Name)
	assert.Equal(t, "ann@x.com", receipt.Stored.Email)
	assert.Equal(t, "hi", receipt.Stored.Message)
	assert.Len(t, mailer.sent, 1)
}

func TestDispatch_SpamAnnotations(t *testing.T) {
	mailer := &fakeMailer{}
	screener := &fakeScreener{result: &ScreeningResult{IsSpam: true, Score: 0.93, Explanation: "crypto offer"}}
	d := NewDispatcher(mailer, nil, screener, identity, "[SPAM] ", zap.NewNop())

	receipt, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	require.NotNil(t, receipt.Screening)

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, "[SPAM] New message from Ann", email.Subject)
	assert.Equal(t, "true", email.Headers["X-Spam-Status"])
	assert.Equal(t, "0.9300", email.Headers["X-Spam-Score"])
	assert.Equal(t, "crypto offer", email.Headers["X-Spam-Reason"])
}

func TestDispatch_HamKeepsSubject(t *testing.T) {
	mailer := &fakeMailer{}
	screener := &fakeScreener{result: &ScreeningResult{IsSpam: false, Score: 0.05}}
	d := NewDispatcher(mailer, nil, screener, identity, "[SPAM] ", zap.NewNop())

	_, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	assert.Equal(t, "New message from Ann", mailer.sent[0].Subject)
	assert.Equal(t, "false", mailer.sent[0].Headers["X-Spam-Status"])
}

func TestDispatch_ScreeningErrorStillSends(t *testing.T) {
	mailer := &fakeMailer{}
	screener := &fakeScreener{err: errors.New("rate limited")}
	d := NewDispatcher(mailer, nil, screener, identity, "[SPAM] ", zap.NewNop())

	receipt, err := d.Dispatch(context.Background(), ann)
	require.NoError(t, err)
	assert.Nil(t, receipt.Screening)
	require.Len(t, mailer.sent, 1)
	assert.Empty(t, mailer.sent[0].Headers)
}

func TestListAll(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, nil, nil, identity, "", zap.NewNop())
	assert.False(t, d.StoreEnabled())
	_, err := d.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreDisabled)

	store := &fakeStore{listErr: errors.New("disk I/O error")}
	d = NewDispatcher(&fakeMailer{}, store, nil, identity, "", zap.NewNop())
	_, err = d.ListAll(context.Background())
	assert.ErrorIs(t, err, store.listErr)
}
