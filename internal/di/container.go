package di

import (
	"context"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/core"
	"github.com/mikey/contact-relay/internal/factory"
	"github.com/mikey/contact-relay/internal/logging"
	"github.com/mikey/contact-relay/internal/metrics"
	"github.com/mikey/contact-relay/internal/ports"
	"github.com/mikey/contact-relay/internal/utils"
)

// storeConnectTimeout bounds how long startup waits for a database
const storeConnectTimeout = 30 * time.Second

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	return buildContainer(config.New)
}

// buildContainer registers everything downstream of the configuration
func buildContainer(newConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(newConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.NewDefaultMetrics); err != nil {
		return nil, err
	}

	// Register server
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ServerFactory) (ports.Server, error) {
		return f.CreateServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers the dispatcher and its collaborators. It expects a
// *config.Config and *zap.Logger to be provided already.
func provideCore(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewMailerFactory); err != nil {
		return err
	}

	// Register message store
	if err := container.Provide(func(f *factory.StoreFactory) (core.MessageStore, error) {
		ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
		defer cancel()
		return f.CreateMessageStore(ctx)
	}); err != nil {
		return err
	}

	// Register mailer and identity
	if err := container.Provide(func(f *factory.MailerFactory) (core.Mailer, error) {
		return f.CreateMailer()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.MailerFactory) (core.MailIdentity, error) {
		return f.CreateIdentity()
	}); err != nil {
		return err
	}

	// Register screener
	if err := container.Provide(func(f *factory.LLMFactory) (core.Screener, error) {
		return f.CreateScreener()
	}); err != nil {
		return err
	}

	// Register dispatcher
	if err := container.Provide(func(
		mailer core.Mailer,
		store core.MessageStore,
		screener core.Screener,
		identity core.MailIdentity,
		f *factory.LLMFactory,
		logger *zap.Logger,
	) *core.Dispatcher {
		return core.NewDispatcher(mailer, store, screener, identity, f.SubjectPrefix(), logger)
	}); err != nil {
		return err
	}

	return nil
}
