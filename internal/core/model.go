package core

import (
	"time"
)

// Submission is a contact form entry as received from the client
type Submission struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// StoredMessage is a persisted submission. Records are never mutated after creation.
type StoredMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// OutboundEmail is the notification relayed to the site owner's inbox
type OutboundEmail struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
	Headers map[string]string
}

// ScreeningResult represents the result of spam screening
type ScreeningResult struct {
	IsSpam      bool
	Score       float64
	Confidence  float64
	Explanation string
	AnalyzedAt  time.Time
	ModelUsed   string
}

// DeliveryReceipt reports what a successful dispatch did
type DeliveryReceipt struct {
	// Stored is nil when persistence is disabled
	Stored    *StoredMessage
	SentAt    time.Time
	Screening *ScreeningResult
}
