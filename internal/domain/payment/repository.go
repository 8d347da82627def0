package payment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert persists the transaction. One logical transaction exists
	// per invoice: when a row for the invoice already exists the insert
	// is a no-op and the existing record is returned with created=false.
	Insert(ctx context.Context, t *Transaction) (existing *Transaction, created bool, err error)

	// GetByInvoiceID returns the transaction for the invoice, or nil.
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*Transaction, error)

	// ListForAuction returns all settlement attempts for an auction.
	ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*Transaction, error)
}
