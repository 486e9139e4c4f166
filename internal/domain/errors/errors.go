package errors

import (
	"errors"
	"strconv"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownMethod      = errors.New("unknown payment method")

	ErrPaymentMethodMismatch = errors.New("payment method mismatch")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrPaymentNotVerified    = errors.New("payment not verified")

	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
)

// ValidationError carries a human readable reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Is reports ValidationError as an ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(reason string) error { return &ValidationError{Reason: reason} }

// ProviderError describes a failed round trip to an external payment
// provider. It is retryable and always matches ErrGatewayUnavailable.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + " " + e.Op
	if e.StatusCode != 0 {
		msg += ": unexpected status " + strconv.Itoa(e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGatewayUnavailable}
	}
	return []error{ErrGatewayUnavailable, e.Err}
}
