package models

import "errors"

// Sentinel errors for the business-failure taxonomy. The handler layer maps
// these to HTTP status codes; anything not in this list is treated as an
// infrastructure fault.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrCurrencyMismatch     = errors.New("currency mismatch")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvalidOrderState    = errors.New("order is not pending")
	ErrReservationOverflow  = errors.New("release exceeds reserved quantity")
	ErrNotAuthorized        = errors.New("not authorized for this customer")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrHoldingExists        = errors.New("holding already exists for customer and asset")
	ErrInvalidCredentials   = errors.New("invalid username or password")
)

// ValidationError reports a malformed request field. It is caller-caused and
// maps to a 400 at the transport layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
