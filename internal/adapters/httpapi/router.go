package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/contact-relay/internal/metrics"
	"go.uber.org/zap"
)

// RouterOptions controls the middleware stack
type RouterOptions struct {
	TrustProxy     bool
	ExposeMetrics  bool
	AllowedOrigins []string
	CORSMaxAge     int
}

// NewRouter builds the chi router with the full middleware chain
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	policy := NewOriginPolicy(opts.AllowedOrigins, opts.CORSMaxAge)

	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(m, logger))
	r.Use(middleware.Recoverer)
	r.Use(policy.Guard(m, logger))
	r.Use(policy.Handler())

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.APIHealthz)
		r.Post("/messages", h.CreateMessage)
		r.Get("/messages", h.ListMessages)
	})

	if opts.ExposeMetrics {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}

// requestLogger logs each request once it completes and counts it by route
func requestLogger(m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
