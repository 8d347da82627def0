package bid

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert appends a bid to the ledger.
	Insert(ctx context.Context, b *Bid) error

	// HighestAmount returns the highest bid amount for the auction, or
	// nil when no bid exists.
	HighestAmount(ctx context.Context, auctionID uuid.UUID) (*int64, error)

	// ListForAuction returns bids for an auction ordered by amount
	// descending.
	ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
}

// SnapshotRepository maintains the local auction read model.
type SnapshotRepository interface {
	// Upsert creates or refreshes the snapshot row.
	Upsert(ctx context.Context, snap *AuctionSnapshot) error

	// MarkDeleted tombstones the snapshot so late bids are rejected.
	MarkDeleted(ctx context.Context, id uuid.UUID) error

	// GetForUpdate loads the snapshot locking its row for the duration
	// of the surrounding transaction. This is the serialization point
	// for concurrent bids on one auction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*AuctionSnapshot, error)

	// Get loads the snapshot without locking.
	Get(ctx context.Context, id uuid.UUID) (*AuctionSnapshot, error)
}
