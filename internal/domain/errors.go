package domain

import "errors"

// Shared error taxonomy. Services return these (possibly wrapped); handlers
// map them to HTTP statuses.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyPurchased   = errors.New("file already purchased")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrForbidden          = errors.New("forbidden")
)
