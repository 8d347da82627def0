package auction

import (
	"context"

	"github.com/google/uuid"
)

type ListFilter struct {
	Seller string
	Status Status
	Limit  int
	Offset int
}

type Repository interface {
	// Create persists a new auction.
	Create(ctx context.Context, a *Auction) error

	// GetByID returns the auction or domain errors.ErrAuctionNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)

	// Update persists the aggregate using its version column as an
	// optimistic concurrency token; returns ErrOptimisticLockFailed on
	// conflict.
	Update(ctx context.Context, a *Auction) error

	// Delete removes the aggregate entirely (no soft delete).
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, filter ListFilter) ([]*Auction, error)
}
