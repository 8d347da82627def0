package auction

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/auction"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

type DeleteAuctionCommand struct {
	AuctionID uuid.UUID
	Seller    string
}

// DeleteAuctionUseCase removes an auction that has not entered
// settlement. Once an auction is finished its record is the anchor of
// the downstream invoice and payment rows, so deletion is refused.
type DeleteAuctionUseCase struct {
	auctionRepo auction.Repository
	outboxRepo  OutboxWriter
	txManager   TransactionManager
}

func NewDeleteAuctionUseCase(
	auctionRepo auction.Repository,
	outboxRepo OutboxWriter,
	txManager TransactionManager,
) *DeleteAuctionUseCase {
	return &DeleteAuctionUseCase{
		auctionRepo: auctionRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
	}
}

func (uc *DeleteAuctionUseCase) Execute(ctx context.Context, cmd DeleteAuctionCommand) error {
	return uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		a, err := uc.auctionRepo.GetByID(txCtx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if a.Seller != cmd.Seller {
			return domainErrors.ErrNotSeller
		}
		if !a.IsOpen() {
			return domainErrors.ErrAuctionNotOpen
		}
		if err := uc.auctionRepo.Delete(txCtx, a.ID); err != nil {
			return err
		}
		entry, err := outbox.NewEntry(aggregateType, a.ID, event.TypeAuctionDeleted, event.AuctionDeleted{ID: a.ID})
		if err != nil {
			return err
		}
		return uc.outboxRepo.Insert(txCtx, entry)
	})
}
