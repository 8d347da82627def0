package auction

import (
	"context"
	"errors"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/rs/zerolog"
)

// BidPlacedHandler tracks the running high bid on the auction record.
// Only accepted bids move it; a stale or lower amount is a no-op, which
// makes the handler safe under duplication and reordering.
type BidPlacedHandler struct {
	auctionRepo auction.Repository
	logger      zerolog.Logger
}

func NewBidPlacedHandler(auctionRepo auction.Repository, logger zerolog.Logger) *BidPlacedHandler {
	return &BidPlacedHandler{auctionRepo: auctionRepo, logger: logger}
}

func (h *BidPlacedHandler) Handle(ctx context.Context, env *event.Envelope) error {
	var placed event.BidPlaced
	if err := env.Decode(&placed); err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}

	if !bid.Status(placed.BidStatus).Accepted() {
		return nil
	}

	a, err := h.auctionRepo.GetByID(ctx, placed.AuctionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAuctionNotFound) {
			return &deadletter.Error{
				Reason: deadletter.ReasonUnknownAggregate,
				Detail: "auction " + placed.AuctionID.String() + " not found",
			}
		}
		return err
	}

	if !a.RecordHighBid(placed.Amount) {
		return nil
	}
	if err := h.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	h.logger.Debug().
		Str("auction_id", a.ID.String()).
		Int64("amount", placed.Amount).
		Msg("High bid updated")
	return nil
}
