package payment

import (
	"context"
	"errors"
	"time"

	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/domain/payment"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/gateway"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/auctionworks/settlement/pkg/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const aggregateType = "payment"

// SettlePaymentHandler charges the winning bidder for a generated
// invoice. Every gateway outcome is recorded: a decline, a timeout or
// an unreachable gateway produces a Failed transaction and a
// PaymentProcessed event, never a dropped message. The per-invoice
// transaction row is unique, so the settlement result is emitted once
// even under redelivery.
type SettlePaymentHandler struct {
	paymentRepo    payment.Repository
	outboxRepo     OutboxWriter
	gw             gateway.Gateway
	locks          LockFactory
	requestTimeout time.Duration
	retryCfg       retry.Config
	logger         zerolog.Logger
	metrics        *observability.Metrics
}

func NewSettlePaymentHandler(
	paymentRepo payment.Repository,
	outboxRepo OutboxWriter,
	gw gateway.Gateway,
	locks LockFactory,
	requestTimeout time.Duration,
	retryCfg retry.Config,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *SettlePaymentHandler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.DefaultConfig()
	}
	return &SettlePaymentHandler{
		paymentRepo:    paymentRepo,
		outboxRepo:     outboxRepo,
		gw:             gw,
		locks:          locks,
		requestTimeout: requestTimeout,
		retryCfg:       retryCfg,
		logger:         logger,
		metrics:        metrics,
	}
}

// Handle runs inside the consumer's transaction.
func (h *SettlePaymentHandler) Handle(ctx context.Context, env *event.Envelope) error {
	var inv event.InvoiceGenerated
	if err := env.Decode(&inv); err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}
	if inv.InvoiceID == uuid.Nil || inv.AuctionID == uuid.Nil {
		return &deadletter.Error{
			Reason: deadletter.ReasonUndecodable,
			Detail: "invoice event missing invoice or auction identity",
		}
	}

	// A settled invoice never reaches the gateway again, even when the
	// inbox missed the redelivery (fresh message id on a re-emit).
	existing, err := h.paymentRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil && !errors.Is(err, domainErrors.ErrPaymentNotFound) {
		return err
	}
	if existing != nil {
		h.logger.Info().
			Str("invoice_id", inv.InvoiceID.String()).
			Str("payment_id", existing.ID.String()).
			Msg("Invoice already settled")
		return nil
	}

	lock := h.locks("invoice:" + inv.InvoiceID.String())
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		// Another instance is mid-charge; retry after its lock expires.
		return domainErrors.ErrLockAcquisitionFailed
	}
	defer lock.Release(ctx)

	recorded, created, err := h.paymentRepo.Insert(ctx, h.charge(ctx, inv))
	if err != nil {
		return err
	}
	if !created {
		h.logger.Info().
			Str("invoice_id", inv.InvoiceID.String()).
			Msg("Settlement already recorded for invoice")
		return nil
	}

	entry, err := outbox.NewEntry(aggregateType, recorded.ID, event.TypePaymentProcessed, recorded.ToProcessed())
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, entry); err != nil {
		return err
	}

	h.metrics.PaymentsSettled.WithLabelValues(string(recorded.Status)).Inc()
	h.logger.Info().
		Str("invoice_id", inv.InvoiceID.String()).
		Str("payment_id", recorded.ID.String()).
		Str("status", string(recorded.Status)).
		Msg("Payment settled")
	return nil
}

// charge calls the gateway, retrying transport faults with backoff,
// and folds the outcome into a transaction record. Settlement always
// terminates: a decline, a timeout, or a gateway still unreachable
// after the retry budget is a Failed transaction, never an escalated
// processing failure — the auction must reach a terminal payment state.
func (h *SettlePaymentHandler) charge(ctx context.Context, inv event.InvoiceGenerated) *payment.Transaction {
	total := inv.WinningBidAmount + inv.TaxesAndFees

	start := time.Now()
	result, err := retry.DoWithResult(ctx, h.retryCfg, func() (*gateway.ChargeResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
		return h.gw.Charge(callCtx, gateway.ChargeRequest{
			InvoiceID:   inv.InvoiceID.String(),
			AmountCents: int64(total * 100),
			Currency:    inv.PaymentTerms.Currency,
			Email:       inv.HighestBidder.Email,
			Metadata: map[string]any{
				"auctionId": inv.AuctionID.String(),
				"bidderId":  inv.HighestBidder.BidderID,
			},
		})
	})
	h.metrics.GatewayCallTime.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		h.metrics.GatewayCalls.WithLabelValues("success").Inc()
		return payment.NewTransaction(inv.AuctionID, inv.InvoiceID, total, payment.StatusSuccess, result.Reference, "")
	case errors.Is(err, domainErrors.ErrGatewayDeclined):
		h.metrics.GatewayCalls.WithLabelValues("declined").Inc()
		reason := "payment declined"
		if result != nil && result.ErrorMessage != "" {
			reason = result.ErrorMessage
		}
		ref := ""
		if result != nil {
			ref = result.Reference
		}
		return payment.NewTransaction(inv.AuctionID, inv.InvoiceID, total, payment.StatusFailed, ref, reason)
	case errors.Is(err, domainErrors.ErrGatewayTimeout), errors.Is(err, context.DeadlineExceeded):
		h.metrics.GatewayCalls.WithLabelValues("timeout").Inc()
		return payment.NewTransaction(inv.AuctionID, inv.InvoiceID, total, payment.StatusFailed, "", "gateway request timed out")
	default:
		h.metrics.GatewayCalls.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).
			Str("invoice_id", inv.InvoiceID.String()).
			Msg("Gateway unreachable, settlement failed")
		return payment.NewTransaction(inv.AuctionID, inv.InvoiceID, total, payment.StatusFailed, "", "payment gateway unavailable: "+err.Error())
	}
}

// GetPaymentsUseCase lists settlement attempts for an auction.
type GetPaymentsUseCase struct {
	paymentRepo payment.Repository
}

func NewGetPaymentsUseCase(paymentRepo payment.Repository) *GetPaymentsUseCase {
	return &GetPaymentsUseCase{paymentRepo: paymentRepo}
}

func (uc *GetPaymentsUseCase) Execute(ctx context.Context, auctionID uuid.UUID) ([]*payment.Transaction, error) {
	return uc.paymentRepo.ListForAuction(ctx, auctionID)
}
