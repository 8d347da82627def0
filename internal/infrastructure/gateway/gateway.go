package gateway

import (
	"context"
)

type ChargeResult struct {
	Reference    string
	Status       string // "success", "failed"
	ErrorMessage string
}

// Gateway charges the winning bidder for an invoice. Implementations
// must be safe to call twice with the same invoice reference: the
// reference doubles as the gateway-side idempotency key.
type Gateway interface {
	// Name returns the gateway name.
	Name() string
	// Charge collects the invoice total from the bidder.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	InvoiceID   string
	AmountCents int64 // in cents
	Currency    string
	Email       string
	Metadata    map[string]any
}
