package core

import (
	"errors"
)

const (
	// MissingFieldsMessage is returned to clients when a submission is incomplete
	MissingFieldsMessage = "All fields are required."

	// DeliveryFailureMessage is the only failure text clients ever see for downstream errors
	DeliveryFailureMessage = "Failed to send email. Please try again later."
)

var (
	// ErrMissingFields is returned when name, email or message is empty
	ErrMissingFields = errors.New(MissingFieldsMessage)

	// ErrStoreDisabled is returned by ListAll when no message store is configured
	ErrStoreDisabled = errors.New("message store is not configured")
)

// DeliveryFailure wraps a store or mailer error. Its message is static so the
// cause never leaks to clients; use errors.Unwrap to reach it for logging.
type DeliveryFailure struct {
	Stage string
	Err   error
}

func (e *DeliveryFailure) Error() string {
	return DeliveryFailureMessage
}

func (e *DeliveryFailure) Unwrap() error {
	return e.Err
}

// IsDeliveryFailure reports whether err is or wraps a *DeliveryFailure
func IsDeliveryFailure(err error) bool {
	var df *DeliveryFailure
	return errors.As(err, &df)
}
