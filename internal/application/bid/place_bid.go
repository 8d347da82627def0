package bid

import (
	"context"
	"time"

	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/google/uuid"
)

const aggregateType = "bid"

type PlaceBidCommand struct {
	AuctionID uuid.UUID
	Bidder    string
	Amount    int64
}

// PlaceBidUseCase validates, ranks and records a bid, staging the
// BidPlaced event in the same transaction. The auction snapshot row is
// locked for the duration, so two concurrent bids on one auction rank
// against a consistent highest amount: one observes the other's insert.
type PlaceBidUseCase struct {
	bidRepo      bid.Repository
	snapshotRepo bid.SnapshotRepository
	outboxRepo   OutboxWriter
	txManager    TransactionManager
	metrics      *observability.Metrics
}

func NewPlaceBidUseCase(
	bidRepo bid.Repository,
	snapshotRepo bid.SnapshotRepository,
	outboxRepo OutboxWriter,
	txManager TransactionManager,
	metrics *observability.Metrics,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		bidRepo:      bidRepo,
		snapshotRepo: snapshotRepo,
		outboxRepo:   outboxRepo,
		txManager:    txManager,
		metrics:      metrics,
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidCommand) (*bid.Bid, error) {
	start := time.Now()
	var placed *bid.Bid

	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		snap, err := uc.snapshotRepo.GetForUpdate(txCtx, cmd.AuctionID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := bid.Validate(snap, cmd.Bidder, cmd.Amount, now); err != nil {
			return err
		}

		highest, err := uc.bidRepo.HighestAmount(txCtx, cmd.AuctionID)
		if err != nil {
			return err
		}

		status := bid.Rank(snap, cmd.Amount, highest)
		b := bid.New(cmd.AuctionID, cmd.Bidder, cmd.Amount, status, now)
		if err := uc.bidRepo.Insert(txCtx, b); err != nil {
			return err
		}

		entry, err := outbox.NewEntry(aggregateType, b.AuctionID, event.TypeBidPlaced, event.BidPlaced{
			ID:        b.ID,
			AuctionID: b.AuctionID,
			Bidder:    b.Bidder,
			BidTime:   b.BidTime,
			Amount:    b.Amount,
			BidStatus: string(b.Status),
		})
		if err != nil {
			return err
		}
		if err := uc.outboxRepo.Insert(txCtx, entry); err != nil {
			return err
		}

		placed = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.BidsRanked.WithLabelValues(string(placed.Status)).Inc()
	uc.metrics.BidRankTime.Observe(time.Since(start).Seconds())
	return placed, nil
}
