package core

import (
	"context"
)

// Mailer delivers an outbound email. Send blocks until the relay accepts or rejects it.
type Mailer interface {
	Send(ctx context.Context, email *OutboundEmail) error
}

// MessageStore persists submissions
type MessageStore interface {
	// Create stores the submission and returns the record with its ID and CreatedAt assigned
	Create(ctx context.Context, sub Submission) (*StoredMessage, error)

	// ListAll returns every stored message, newest first
	ListAll(ctx context.Context) ([]StoredMessage, error)
}

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// AnalyzeSubmission asks the model whether a submission is spam
	AnalyzeSubmission(ctx context.Context, sub Submission) (*ScreeningResult, error)
}

// Screener decides whether a submission looks like spam
type Screener interface {
	Screen(ctx context.Context, sub Submission) (*ScreeningResult, error)
}
