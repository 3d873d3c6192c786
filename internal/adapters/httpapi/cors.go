package httpapi

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/mikey/contact-relay/internal/metrics"
	"go.uber.org/zap"
)

const corsRejectedMessage = "Not allowed by CORS"

// OriginPolicy is the cross-origin allow-list. Requests without an Origin
// header (curl, server-to-server, same-origin) are always allowed.
type OriginPolicy struct {
	allowed map[string]struct{}
	maxAge  int
}

// NewOriginPolicy creates a policy from exact origin strings
func NewOriginPolicy(origins []string, maxAge int) *OriginPolicy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &OriginPolicy{allowed: allowed, maxAge: maxAge}
}

// Allows reports whether a request carrying origin may proceed
func (p *OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return true
	}
	_, ok := p.allowed[origin]
	return ok
}

// Guard rejects disallowed origins with 403 before any handler runs
func (p *OriginPolicy) Guard(m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !p.Allows(origin) {
				m.CORSRejections.Inc()
				logger.Warn("Rejected cross-origin request",
					zap.String("origin", origin),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				http.Error(w, corsRejectedMessage, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handler emits the CORS response headers and answers preflight requests
func (p *OriginPolicy) Handler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return p.Allows(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           p.maxAge,
	})
}
