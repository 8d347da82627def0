package bid

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/rs/zerolog"
)

// AuctionProjectionHandler maintains the bid ledger's local auction read
// model from the auction owner's lifecycle events. The model carries
// only what ranking needs: seller, reserve price, end time and a delete
// tombstone.
type AuctionProjectionHandler struct {
	snapshotRepo bid.SnapshotRepository
	logger       zerolog.Logger
}

func NewAuctionProjectionHandler(snapshotRepo bid.SnapshotRepository, logger zerolog.Logger) *AuctionProjectionHandler {
	return &AuctionProjectionHandler{snapshotRepo: snapshotRepo, logger: logger}
}

func (h *AuctionProjectionHandler) Handle(ctx context.Context, env *event.Envelope) error {
	switch env.EventType {
	case event.TypeAuctionCreated:
		var created event.AuctionCreated
		if err := env.Decode(&created); err != nil {
			return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
		}
		snap := &bid.AuctionSnapshot{
			ID:           created.ID,
			Seller:       created.Seller,
			ReservePrice: created.ReservePrice,
			AuctionEnd:   created.AuctionEnd,
		}
		if err := h.snapshotRepo.Upsert(ctx, snap); err != nil {
			return err
		}
		h.logger.Debug().Str("auction_id", created.ID.String()).Msg("Auction snapshot created")
		return nil

	case event.TypeAuctionUpdated:
		// Item changes never affect ranking; nothing to project.
		return nil

	case event.TypeAuctionDeleted:
		var deleted event.AuctionDeleted
		if err := env.Decode(&deleted); err != nil {
			return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
		}
		if err := h.snapshotRepo.MarkDeleted(ctx, deleted.ID); err != nil {
			return err
		}
		h.logger.Debug().Str("auction_id", deleted.ID.String()).Msg("Auction snapshot tombstoned")
		return nil

	default:
		return &deadletter.Error{
			Reason: deadletter.ReasonUnknownEventType,
			Detail: env.EventType,
		}
	}
}
