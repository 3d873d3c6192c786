package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/di"
	"github.com/mikey/contact-relay/internal/ports"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// runDeps carries the injected dependencies. Store and screener are optional.
type runDeps struct {
	dig.In

	Logger   *zap.Logger
	Server   ports.Server
	Store    core.MessageStore
	Screener core.Screener
}

// run is the main application function that gets all dependencies injected
func run(deps runDeps) error {
	logger := deps.Logger
	defer logger.Sync()

	// Start the server
	if err := deps.Server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the server before releasing what its handlers use
	if err := deps.Server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := deps.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close message store", zap.Error(err))
		}
	}
	if closer, ok := deps.Screener.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close screener", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
