package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/contact-relay/internal/adapters/store"
	"github.com/mikey/contact-relay/internal/config"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates message stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMessageStore creates a message store based on the configuration.
// It returns a nil store when persistence is disabled.
func (f *StoreFactory) CreateMessageStore(ctx context.Context) (core.MessageStore, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "none", "":
		f.logger.Info("Message persistence disabled")
		return nil, nil
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "mysql":
		if storeCfg.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the mysql store")
		}
		return store.NewMySQLStore(ctx, storeCfg.DSN, f.logger)
	case "postgres":
		if storeCfg.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the postgres store")
		}
		return store.NewPostgresStore(ctx, storeCfg.DSN, f.logger)
	case "mongo":
		if storeCfg.DSN == "" {
			return nil, fmt.Errorf("store.dsn is required for the mongo store")
		}
		return store.NewMongoStore(ctx, storeCfg.DSN, storeCfg.MongoDatabase, storeCfg.Collection, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
