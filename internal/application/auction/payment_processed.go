package auction

import (
	"context"
	"errors"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/rs/zerolog"
)

// PaymentProcessedHandler closes the settlement loop: the payment
// outcome advances the auction into its terminal payment state.
type PaymentProcessedHandler struct {
	auctionRepo auction.Repository
	logger      zerolog.Logger
}

func NewPaymentProcessedHandler(auctionRepo auction.Repository, logger zerolog.Logger) *PaymentProcessedHandler {
	return &PaymentProcessedHandler{auctionRepo: auctionRepo, logger: logger}
}

// Handle runs inside the consumer's transaction. A payment event for an
// auction that never completed is parked rather than applied: the
// rollback leaves no inbox entry, so a replay after the auction catches
// up applies cleanly.
func (h *PaymentProcessedHandler) Handle(ctx context.Context, env *event.Envelope) error {
	var pay event.PaymentProcessed
	if err := env.Decode(&pay); err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}

	a, err := h.auctionRepo.GetByID(ctx, pay.AuctionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAuctionNotFound) {
			return &deadletter.Error{
				Reason: deadletter.ReasonUnknownAggregate,
				Detail: "auction " + pay.AuctionID.String() + " not found",
			}
		}
		return err
	}

	if err := a.ApplyPaymentStatus(pay.Status); err != nil {
		reason := deadletter.ReasonInvalidTransition
		if a.IsOpen() {
			reason = deadletter.ReasonPrematurePayment
		}
		return &deadletter.Error{Reason: reason, Detail: err.Error()}
	}

	if err := h.auctionRepo.Update(ctx, a); err != nil {
		return err
	}

	h.logger.Info().
		Str("auction_id", a.ID.String()).
		Str("payment_id", pay.PaymentID.String()).
		Str("status", string(a.Status)).
		Msg("Payment outcome applied to auction")
	return nil
}
