package gateway

import (
	"context"
	"errors"
)

// Status is the normalized settlement state reported by the gateway.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
	StatusUnknown Status = "unknown"
)

// ErrUnavailable covers network failures, timeouts, and non-2xx gateway
// responses. Callers leave the payment pending and let the poll retry.
var ErrUnavailable = errors.New("payment gateway unavailable")

type InitializeRequest struct {
	Email          string // buyer contact required by the checkout page
	AmountCents    int64  // minor currency units
	Reference      string // our transaction reference, used for callback correlation
	CallbackURL    string
	IdempotencyKey string // forwarded so the gateway will not double-charge
}

type InitializeResponse struct {
	AuthorizationURL string // gateway-hosted checkout page
	Reference        string // the gateway's own reference for the transaction
}

type VerifyResult struct {
	Status        Status
	GatewayStatus string // raw status string as reported, for logging
	AmountCents   int64
}

// Provider is the outbound boundary to the payment gateway. Both calls are
// stateless; implementations must bound their own timeouts.
type Provider interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}
