package invoice

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert persists the invoice. When an invoice for the same
	// (auction, bidder) pair already exists the insert is a no-op and
	// the existing invoice is returned with created=false.
	Insert(ctx context.Context, inv *Invoice) (existing *Invoice, created bool, err error)

	// GetByID returns the invoice or domain errors.ErrInvoiceNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// GetByAuctionAndBidder returns the invoice for the pair, or nil.
	GetByAuctionAndBidder(ctx context.Context, auctionID uuid.UUID, bidderID string) (*Invoice, error)
}
