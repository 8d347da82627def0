package auction

import (
	"context"
	"time"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

const aggregateType = "auction"

// CreateAuctionCommand carries the input for creating an auction.
type CreateAuctionCommand struct {
	Seller          string
	ReservePrice    int64
	AuctionEnd      time.Time
	InitialStatus   string
	ItemName        string
	ItemDescription string
	ItemImageURL    string
}

// CreateAuctionUseCase persists a new auction and stages its
// AuctionCreated event in the same transaction.
type CreateAuctionUseCase struct {
	auctionRepo auction.Repository
	outboxRepo  OutboxWriter
	txManager   TransactionManager
}

func NewCreateAuctionUseCase(
	auctionRepo auction.Repository,
	outboxRepo OutboxWriter,
	txManager TransactionManager,
) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{
		auctionRepo: auctionRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
	}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionCommand) (*auction.Auction, error) {
	a, err := auction.New(uuid.Nil, cmd.Seller, cmd.ReservePrice, cmd.AuctionEnd, auction.Status(cmd.InitialStatus), auction.Item{
		Name:        cmd.ItemName,
		Description: cmd.ItemDescription,
		ImageURL:    cmd.ItemImageURL,
	})
	if err != nil {
		return nil, err
	}

	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.auctionRepo.Create(txCtx, a); err != nil {
			return err
		}
		entry, err := outbox.NewEntry(aggregateType, a.ID, event.TypeAuctionCreated, event.AuctionCreated{
			ID:           a.ID,
			ReservePrice: a.ReservePrice,
			Seller:       a.Seller,
			AuctionEnd:   a.AuctionEnd,
			Status:       string(a.Status),
			Item: event.ItemDetails{
				ItemID:      a.Item.ID.String(),
				Name:        a.Item.Name,
				Description: a.Item.Description,
			},
		})
		if err != nil {
			return err
		}
		return uc.outboxRepo.Insert(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
