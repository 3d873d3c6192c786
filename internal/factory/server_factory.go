package factory

import (
	"github.com/mikey/contact-relay/internal/adapters/httpapi"
	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/metrics"
	"github.com/mikey/contact-relay/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates the HTTP server based on configuration
type ServerFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	dispatcher *core.Dispatcher
	metrics    *metrics.Metrics
}

// NewServerFactory creates a new server factory
func NewServerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	dispatcher *core.Dispatcher,
	m *metrics.Metrics,
) *ServerFactory {
	return &ServerFactory{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatcher,
		metrics:    m,
	}
}

// CreateServer creates the HTTP server with its router and handlers
func (f *ServerFactory) CreateServer() (ports.Server, error) {
	settings, err := f.cfg.Settings()
	if err != nil {
		return nil, err
	}

	if len(settings.CORS.AllowedOrigins) == 0 {
		f.logger.Warn("No allowed origins configured, browser cross-origin requests will be rejected")
	}

	handler := httpapi.NewHandler(f.dispatcher, f.metrics, f.logger, settings.Server.MaxBodyBytes)
	router := httpapi.NewRouter(handler, f.metrics, f.logger, httpapi.RouterOptions{
		TrustProxy:     settings.Server.TrustProxy,
		ExposeMetrics:  settings.Metrics.Enabled,
		AllowedOrigins: settings.CORS.AllowedOrigins,
		CORSMaxAge:     settings.CORS.MaxAge,
	})

	return httpapi.NewServer(
		router,
		f.logger,
		settings.Server.Addr(),
		settings.Server.ReadTimeout,
		settings.Server.WriteTimeout,
		settings.Server.ShutdownTimeout,
	), nil
}
