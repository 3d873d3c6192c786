package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mikey/contact-relay/internal/ports"
	"go.uber.org/zap"
)

var _ ports.Server = (*Server)(nil)

// Server owns the HTTP listener
type Server struct {
	httpServer      *http.Server
	listener        net.Listener
	logger          *zap.Logger
	listenAddr      string
	shutdownTimeout time.Duration
}

// NewServer creates a new HTTP server for handler
func NewServer(
	handler http.Handler,
	logger *zap.Logger,
	listenAddr string,
	readTimeout time.Duration,
	writeTimeout time.Duration,
	shutdownTimeout time.Duration,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
			ErrorLog:          zap.NewStdLog(logger),
		},
		logger:          logger,
		listenAddr:      listenAddr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.listener = l

	s.logger.Info("HTTP server starting", zap.String("address", l.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests within the shutdown timeout
func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}

	ctx := context.Background()
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.listenAddr
}
