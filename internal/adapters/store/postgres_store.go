package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// PostgresStore is the PostgreSQL implementation of MessageStore.
// The database assigns id and created_at.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and ensures the messages table exists
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at);
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresStore{
		pool:   pool,
		logger: logger,
	}, nil
}

// Create inserts a row and populates ID and CreatedAt from the RETURNING clause
func (s *PostgresStore) Create(ctx context.Context, sub core.Submission) (*core.StoredMessage, error) {
	msg := &core.StoredMessage{
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (name, email, message)
		 VALUES ($1, $2, $3)
		 RETURNING id::text, created_at`,
		sub.Name, sub.Email, sub.Message,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	msg.CreatedAt = msg.CreatedAt.UTC()
	return msg, nil
}

// ListAll returns every message, newest first
func (s *PostgresStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, email, message, created_at
		 FROM messages
		 ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []core.StoredMessage{}
	for rows.Next() {
		var m core.StoredMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
