package auction

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/google/uuid"
)

// GetAuctionUseCase loads a single auction.
type GetAuctionUseCase struct {
	auctionRepo auction.Repository
}

func NewGetAuctionUseCase(auctionRepo auction.Repository) *GetAuctionUseCase {
	return &GetAuctionUseCase{auctionRepo: auctionRepo}
}

func (uc *GetAuctionUseCase) Execute(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	return uc.auctionRepo.GetByID(ctx, id)
}

// ListAuctionsUseCase lists auctions with optional seller and status filters.
type ListAuctionsUseCase struct {
	auctionRepo auction.Repository
}

func NewListAuctionsUseCase(auctionRepo auction.Repository) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{auctionRepo: auctionRepo}
}

func (uc *ListAuctionsUseCase) Execute(ctx context.Context, filter auction.ListFilter) ([]*auction.Auction, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return uc.auctionRepo.List(ctx, filter)
}
