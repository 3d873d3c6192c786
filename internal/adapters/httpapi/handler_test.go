package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/mikey/contact-relay/internal/adapters/store"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const allowedOrigin = "https://gencorp.com"

type recordingMailer struct {
	mu   sync.Mutex
	sent []*core.OutboundEmail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email *core.OutboundEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

// countingService records whether Dispatch was ever reached
type countingService struct {
	MessageService
	dispatches int
}

func (c *countingService) Dispatch(ctx context.Context, sub core.Submission) (*core.DeliveryReceipt, error) {
	c.dispatches++
	return c.MessageService.Dispatch(ctx, sub)
}

type testEnv struct {
	router  http.Handler
	mailer  *recordingMailer
	service *countingService
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()

	mailer := &recordingMailer{}
	var s core.MessageStore
	if withStore {
		s = store.NewMemoryStore(zap.NewNop())
	}
	dispatcher := core.NewDispatcher(mailer, s, nil,
		core.MailIdentity{From: "owner@gencorp.com"}, "", zap.NewNop())
	service := &countingService{MessageService: dispatcher}

	m := metrics.NewMetrics(prometheus.NewRegistry())
	h := NewHandler(service, m, zap.NewNop(), 0)
	router := NewRouter(h, m, zap.NewNop(), RouterOptions{
		TrustProxy:     true,
		ExposeMetrics:  true,
		AllowedOrigins: []string{allowedOrigin},
		CORSMaxAge:     600,
	})

	return &testEnv{router: router, mailer: mailer, service: service, metrics: m}
}

func (e *testEnv) do(method, path, contentType, body, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestCreateMessage_MissingFields(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"name":"","email":"ann@x.com","message":"hi"}`,
		`{"name":"Ann","message":"hi"}`,
		`{"name":"Ann","email":null,"message":"hi"}`,
		`{"name":"Ann","email":"ann@x.com","message":""}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			env := newTestEnv(t, true)
			rec := env.do(http.MethodPost, "/api/messages", "application/json", body, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "All fields are required.", decodeError(t, rec))
			assert.Zero(t, env.service.dispatches)
			assert.Empty(t, env.mailer.sent)
		})
	}
}

func TestCreateMessage_UnsupportedContentTypeIsMissingFields(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodPost, "/api/messages", "text/plain", "name=Ann", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required.", decodeError(t, rec))
	assert.Zero(t, env.service.dispatches)
}

func TestCreateMessage_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodPost, "/api/messages", "application/json", `{"name":`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", decodeError(t, rec))
	assert.Zero(t, env.service.dispatches)
}

func TestCreateMessage_BodyTooLarge(t *testing.T) {
	mailer := &recordingMailer{}
	d := core.NewDispatcher(mailer, nil, nil, core.MailIdentity{From: "owner@gencorp.com"}, "", zap.NewNop())
	m := metrics.NewMetrics(prometheus.NewRegistry())
	router := NewRouter(NewHandler(d, m, zap.NewNop(), 64), m, zap.NewNop(), RouterOptions{})

	body := `{"name":"Ann","email":"ann@x.com","message":"` + strings.Repeat("a", 128) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, mailer.sent)
}

func TestCreateMessage_SendsWithoutStore(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodPost, "/api/messages", "application/json",
		`{"name":"Ann","email":"ann@x.com","message":"hi"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Message sent successfully!", body["message"])
	assert.NotContains(t, body, "data")

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "ann@x.com", env.mailer.sent[0].ReplyTo)
	assert.Equal(t, "owner@gencorp.com", env.mailer.sent[0].From)
}

func TestCreateMessage_FormBody(t *testing.T) {
	env := newTestEnv(t, true)
	form := url.Values{"name": {"Ann"}, "email": {"ann@x.com"}, "message": {"hi"}}
	rec := env.do(http.MethodPost, "/api/messages", "application/x-www-form-urlencoded", form.Encode(), "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "New message from Ann", env.mailer.sent[0].Subject)
}

func TestCreateMessage_MailFailure(t *testing.T) {
	env := newTestEnv(t, false)
	env.mailer.err = errors.New("dial tcp: i/o timeout")

	rec := env.do(http.MethodPost, "/api/messages", "application/json",
		`{"name":"Ann","email":"ann@x.com","message":"hi"}`, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to send email. Please try again later.", decodeError(t, rec))
	assert.NotContains(t, rec.Body.String(), "timeout")
}

func TestListMessages_Disabled(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(http.MethodGet, "/api/messages", "", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Message history is not enabled.", decodeError(t, rec))
}

func TestListMessages_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t, true)
	rec := env.do(http.MethodGet, "/api/messages", "", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListMessages_NewestFirstAndStable(t *testing.T) {
	env := newTestEnv(t, true)
	for _, name := range []string{"Ann", "Bob", "Cy"} {
		rec := env.do(http.MethodPost, "/api/messages", "application/json",
			`{"name":"`+name+`","email":"a@x.com","message":"hi"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	first := env.do(http.MethodGet, "/api/messages", "", "", "")
	second := env.do(http.MethodGet, "/api/messages", "", "", "")
	assert.Equal(t, first.Body.String(), second.Body.String())

	var records []core.StoredMessage
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &records))
	require.Len(t, records, 3)
	assert.Equal(t, "Cy", records[0].Name)
	assert.Equal(t, "Ann", records[2].Name)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(http.MethodGet, "/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = env.do(http.MethodGet, "/api/healthz", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Positive(t, body.TS)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, false)
	env.do(http.MethodPost, "/api/messages", "application/json", `{}`, "")

	rec := env.do(http.MethodGet, "/metrics", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `contact_submissions_total{outcome="invalid"} 1`)
}

// A site visitor submits the form from an allowed origin and the owner reads
// it back from the history endpoint.
func TestScenario_AnnSubmitsFromAllowedOrigin(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(http.MethodPost, "/api/messages", "application/json",
		`{"name":"Ann","email":"ann@x.com","message":"hi"}`, allowedOrigin)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	var created sendResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Data)
	assert.NotEmpty(t, created.Data.ID)

	rec = env.do(http.MethodGet, "/api/messages", "", "", allowedOrigin)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []core.StoredMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, created.Data.ID, records[0].ID)
	assert.Equal(t, "ann@x.com", records[0].Email)

	require.Len(t, env.mailer.sent, 1)
	assert.Contains(t, env.mailer.sent[0].Subject, "Ann")
}
