package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/contact-relay/internal/core"
	"go.uber.org/zap"
)

// MemoryStore keeps messages in process memory. Contents are lost on restart.
type MemoryStore struct {
	messages []core.StoredMessage
	mu       sync.RWMutex
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores the submission
func (s *MemoryStore) Create(ctx context.Context, sub core.Submission) (*core.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg := core.StoredMessage{
		ID:      uuid.NewString(),
		Name:    sub.Name,
		Email:   sub.Email,
		Message: sub.Message,
	}

	s.mu.Lock()
	msg.CreatedAt = s.now()
	// keep CreatedAt non-decreasing so insertion order is also time order
	if n := len(s.messages); n > 0 && msg.CreatedAt.Before(s.messages[n-1].CreatedAt) {
		msg.CreatedAt = s.messages[n-1].CreatedAt
	}
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return &msg, nil
}

// ListAll returns a copy of every message, newest first. Later inserts win
// ties on CreatedAt.
func (s *MemoryStore) ListAll(ctx context.Context) ([]core.StoredMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.StoredMessage, len(s.messages))
	for i, msg := range s.messages {
		out[len(s.messages)-1-i] = msg
	}
	return out, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	s.logger.Debug("Memory store closed")
	return nil
}
