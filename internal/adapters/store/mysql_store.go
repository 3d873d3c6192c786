package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the MessageStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL and ensures the messages table exists
func NewMySQLStore(ctx context.Context, dsn string, logger *zap.Logger) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	// DATETIME columns must scan into time.Time
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id CHAR(36) NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message MEDIUMTEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_messages_created_at (created_at)
		) DEFAULT CHARSET=utf8mb4
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Create stores the submission
func (s *MySQLStore) Create(ctx context.Context, sub core.Submission) (*core.StoredMessage, error) {
	msg := &core.StoredMessage{
		ID:        uuid.NewString(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, message, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

// ListAll returns every message, newest first
func (s *MySQLStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, message, created_at
		FROM messages
		ORDER BY created_at DESC, seq DESC
	`)
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
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
		return err
	}
	return nil
}
