package payment

import (
	"time"

	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

// Status is the terminal outcome of a settlement attempt. A gateway
// failure is a recorded outcome, never a dropped message.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Transaction is one append-only settlement record per invoice.
type Transaction struct {
	ID               uuid.UUID
	AuctionID        uuid.UUID
	InvoiceID        uuid.UUID
	AmountPaid       float64
	PaymentDate      time.Time
	Status           Status
	GatewayReference string
	FailureReason    string
}

// NewTransaction records the outcome of a gateway call for an invoice.
func NewTransaction(auctionID, invoiceID uuid.UUID, amount float64, status Status, gatewayRef, failureReason string) *Transaction {
	return &Transaction{
		ID:               uuid.New(),
		AuctionID:        auctionID,
		InvoiceID:        invoiceID,
		AmountPaid:       amount,
		PaymentDate:      time.Now().UTC(),
		Status:           status,
		GatewayReference: gatewayRef,
		FailureReason:    failureReason,
	}
}

// ToProcessed builds the PaymentProcessed event for this transaction.
func (t *Transaction) ToProcessed() event.PaymentProcessed {
	return event.PaymentProcessed{
		PaymentID:   t.ID,
		AuctionID:   t.AuctionID,
		InvoiceID:   t.InvoiceID,
		AmountPaid:  t.AmountPaid,
		PaymentDate: t.PaymentDate,
		Status:      string(t.Status),
	}
}
