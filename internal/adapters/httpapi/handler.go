package httpapi

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/metrics"
	"go.uber.org/zap"
)

const (
	sentMessage         = "Message sent successfully!"
	invalidBodyMessage  = "Invalid request body."
	tooLargeMessage     = "Request body too large."
	historyDisabled     = "Message history is not enabled."
	loadFailedMessage   = "Failed to load messages."
	defaultMaxBodyBytes = 1 << 20
)

// MessageService is the part of the dispatcher the handlers depend on
type MessageService interface {
	Dispatch(ctx context.Context, sub core.Submission) (*core.DeliveryReceipt, error)
	ListAll(ctx context.Context) ([]core.StoredMessage, error)
}

// Handler serves the contact form endpoints
type Handler struct {
	service      MessageService
	metrics      *metrics.Metrics
	logger       *zap.Logger
	maxBodyBytes int64
	now          func() time.Time
}

// NewHandler creates a new handler. A non-positive maxBodyBytes selects 1 MiB.
func NewHandler(service MessageService, m *metrics.Metrics, logger *zap.Logger, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{
		service:      service,
		metrics:      m,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type sendResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *core.StoredMessage `json:"data,omitempty"`
}

type healthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

// CreateMessage validates a submission and dispatches it
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	sub, err := h.decodeSubmission(w, r)
	if err != nil {
		h.metrics.Submissions.WithLabelValues(metrics.OutcomeMalformed).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: tooLargeMessage})
			return
		}
		h.logger.Debug("Rejected undecodable body", zap.Error(err))
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: invalidBodyMessage})
		return
	}

	sub, err = core.Validate(sub)
	if err != nil {
		h.metrics.Submissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	start := h.now()
	receipt, err := h.service.Dispatch(r.Context(), sub)
	h.metrics.DispatchDuration.Observe(h.now().Sub(start).Seconds())
	if err != nil {
		h.metrics.Submissions.WithLabelValues(metrics.OutcomeFailed).Inc()
		var df *core.DeliveryFailure
		if errors.As(err, &df) {
			h.metrics.DeliveryFailures.WithLabelValues(df.Stage).Inc()
		}
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: core.DeliveryFailureMessage})
		return
	}

	h.metrics.Submissions.WithLabelValues(metrics.OutcomeSent).Inc()
	if receipt.Stored != nil {
		writeJSON(w, r, http.StatusCreated, sendResponse{Success: true, Message: sentMessage, Data: receipt.Stored})
		return
	}
	writeJSON(w, r, http.StatusOK, sendResponse{Success: true, Message: sentMessage})
}

// ListMessages returns every stored message, newest first
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListAll(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrStoreDisabled) {
			writeJSON(w, r, http.StatusNotFound, errorResponse{Error: historyDisabled})
			return
		}
		h.logger.Error("Failed to list messages", zap.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: loadFailedMessage})
		return
	}
	if messages == nil {
		messages = []core.StoredMessage{}
	}
	writeJSON(w, r, http.StatusOK, messages)
}

// Healthz is the plain liveness probe
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// APIHealthz reports liveness with the server clock in epoch milliseconds
func (h *Handler) APIHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{OK: true, TS: h.now().UnixMilli()})
}

// decodeSubmission reads a JSON or urlencoded body. Any other content type
// yields an empty submission, which then fails validation.
func (h *Handler) decodeSubmission(w http.ResponseWriter, r *http.Request) (core.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var sub core.Submission
		if err := render.DecodeJSON(r.Body, &sub); err != nil {
			return core.Submission{}, err
		}
		return sub, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return core.Submission{}, err
		}
		return core.Submission{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Message: r.PostForm.Get("message"),
		}, nil
	default:
		return core.Submission{}, nil
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
