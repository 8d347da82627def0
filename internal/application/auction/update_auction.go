package auction

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/auction"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

// UpdateAuctionCommand mutates item fields only. Status, bids and the
// winner are owned by the settlement flow and cannot be set here.
type UpdateAuctionCommand struct {
	AuctionID       uuid.UUID
	Seller          string
	ItemName        string
	ItemDescription string
	ItemImageURL    string
}

type UpdateAuctionUseCase struct {
	auctionRepo auction.Repository
	outboxRepo  OutboxWriter
	txManager   TransactionManager
}

func NewUpdateAuctionUseCase(
	auctionRepo auction.Repository,
	outboxRepo OutboxWriter,
	txManager TransactionManager,
) *UpdateAuctionUseCase {
	return &UpdateAuctionUseCase{
		auctionRepo: auctionRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
	}
}

func (uc *UpdateAuctionUseCase) Execute(ctx context.Context, cmd UpdateAuctionCommand) (*auction.Auction, error) {
	var updated *auction.Auction
	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := uc.auctionRepo.GetByID(txCtx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if a.Seller != cmd.Seller {
			return domainErrors.ErrNotSeller
		}
		if err := a.UpdateItem(cmd.ItemName, cmd.ItemDescription, cmd.ItemImageURL); err != nil {
			return err
		}
		if err := uc.auctionRepo.Update(txCtx, a); err != nil {
			return err
		}
		entry, err := outbox.NewEntry(aggregateType, a.ID, event.TypeAuctionUpdated, event.AuctionUpdated{
			ID:          a.ID,
			Name:        a.Item.Name,
			Description: a.Item.Description,
			ImageURL:    a.Item.ImageURL,
		})
		if err != nil {
			return err
		}
		if err := uc.outboxRepo.Insert(txCtx, entry); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
