package payment

import (
	"errors"
	"fmt"
)

// ErrIntentNotFound is returned when the processor has no such intent.
var ErrIntentNotFound = errors.New("payment intent not found")

// GatewayError signals that the processor rejected a request or returned
// something unexpected. The Code is the processor's own error code when one
// was given.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payment gateway error: %s", e.Message)
	}
	return fmt.Sprintf("payment gateway error (%s): %s", e.Code, e.Message)
}

// NewGatewayError wraps a processor failure.
func NewGatewayError(code, msg string) error {
	return &GatewayError{Code: code, Message: msg}
}
