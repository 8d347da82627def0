package auction

import (
	"context"
	"errors"
	"time"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// AuctionFinishedHandler settles the auction when the external timer
// reports the end of bidding. On a recorded sale it stages the
// AuctionWinnerNotified snapshot in the same transaction, which starts
// the invoice-and-payment leg of the settlement.
type AuctionFinishedHandler struct {
	auctionRepo auction.Repository
	outboxRepo  OutboxWriter
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

func NewAuctionFinishedHandler(
	auctionRepo auction.Repository,
	outboxRepo OutboxWriter,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *AuctionFinishedHandler {
	return &AuctionFinishedHandler{
		auctionRepo: auctionRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		metrics:     metrics,
	}
}

// Handle runs inside the consumer's transaction.
func (h *AuctionFinishedHandler) Handle(ctx context.Context, env *event.Envelope) error {
	var fin event.AuctionFinished
	if err := env.Decode(&fin); err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}

	a, err := h.auctionRepo.GetByID(ctx, fin.AuctionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAuctionNotFound) {
			return &deadletter.Error{
				Reason: deadletter.ReasonUnknownAggregate,
				Detail: "auction " + fin.AuctionID.String() + " not found",
			}
		}
		return err
	}

	saleRecorded, err := a.ApplyFinished(fin.ItemSold, fin.Winner, fin.Amount)
	if err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonInvalidTransition, Detail: err.Error()}
	}

	if err := h.auctionRepo.Update(ctx, a); err != nil {
		return err
	}
	h.metrics.AuctionsSettled.WithLabelValues(string(a.Status)).Inc()

	if !saleRecorded {
		h.logger.Info().
			Str("auction_id", a.ID.String()).
			Str("status", string(a.Status)).
			Msg("Auction finished without sale")
		return nil
	}

	snapshot := a.WinnerSnapshot(fin, time.Now().UTC())
	entry, err := outbox.NewEntry(aggregateType, a.ID, event.TypeAuctionWinnerNotified, snapshot)
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, entry); err != nil {
		return err
	}

	h.logger.Info().
		Str("auction_id", a.ID.String()).
		Str("winner", fin.Winner).
		Msg("Auction settled, winner notification staged")
	return nil
}
