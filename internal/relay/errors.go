package relay

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized rejects administrator-only transitions from anyone else.
	ErrUnauthorized = errors.New("relay: actor is not the administrator")
	// ErrNothingArmed means the administrator's text had no armed question to answer.
	ErrNothingArmed = errors.New("relay: no armed question")
)

// DeliveryError reports that the transport refused the answer. The question
// has already been dropped when this error is returned.
type DeliveryError struct {
	UserID int64
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("relay: deliver answer to %d: %v", e.UserID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Code feeds the handler summary err_code.
func (e *DeliveryError) Code() string { return "delivery_failed" }
