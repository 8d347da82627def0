package bid

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/bid"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
)

// GetBidsUseCase returns the bid ledger for an auction, highest first.
type GetBidsUseCase struct {
	bidRepo      bid.Repository
	snapshotRepo bid.SnapshotRepository
}

func NewGetBidsUseCase(bidRepo bid.Repository, snapshotRepo bid.SnapshotRepository) *GetBidsUseCase {
	return &GetBidsUseCase{bidRepo: bidRepo, snapshotRepo: snapshotRepo}
}

func (uc *GetBidsUseCase) Execute(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	snap, err := uc.snapshotRepo.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if snap.Deleted {
		return nil, domainErrors.ErrAuctionNotFound
	}
	return uc.bidRepo.ListForAuction(ctx, auctionID)
}
