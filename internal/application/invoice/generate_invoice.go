package invoice

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/auctionworks/settlement/internal/domain/invoice"
	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const aggregateType = "invoice"

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxWriter defines the interface for writing to the transactional outbox.
type OutboxWriter interface {
	Insert(ctx context.Context, entry *outbox.Entry) error
}

// GenerateInvoiceHandler materializes an invoice from the winner
// notification snapshot. The (auction, bidder) uniqueness constraint
// backstops the inbox: even a notification re-emitted under a fresh
// message id reuses the first invoice instead of creating a second one.
type GenerateInvoiceHandler struct {
	invoiceRepo invoice.Repository
	outboxRepo  OutboxWriter
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

func NewGenerateInvoiceHandler(
	invoiceRepo invoice.Repository,
	outboxRepo OutboxWriter,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *GenerateInvoiceHandler {
	return &GenerateInvoiceHandler{
		invoiceRepo: invoiceRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
		metrics:     metrics,
	}
}

// Handle runs inside the consumer's transaction.
func (h *GenerateInvoiceHandler) Handle(ctx context.Context, env *event.Envelope) error {
	var notified event.AuctionWinnerNotified
	if err := env.Decode(&notified); err != nil {
		return &deadletter.Error{Reason: deadletter.ReasonUndecodable, Detail: err.Error()}
	}
	if notified.AuctionID == uuid.Nil || notified.HighestBidder.BidderID == "" {
		return &deadletter.Error{
			Reason: deadletter.ReasonUndecodable,
			Detail: "winner notification missing auction or bidder identity",
		}
	}

	inv, created, err := h.invoiceRepo.Insert(ctx, invoice.FromWinnerNotified(notified))
	if err != nil {
		return err
	}
	if !created {
		h.logger.Info().
			Str("auction_id", inv.AuctionID.String()).
			Str("invoice_id", inv.ID.String()).
			Msg("Invoice already exists for auction and bidder")
		return nil
	}

	entry, err := outbox.NewEntry(aggregateType, inv.ID, event.TypeInvoiceGenerated, inv.ToGenerated())
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, entry); err != nil {
		return err
	}

	h.metrics.InvoicesCreated.Inc()
	h.logger.Info().
		Str("auction_id", inv.AuctionID.String()).
		Str("invoice_id", inv.ID.String()).
		Float64("amount", inv.WinningAmount).
		Msg("Invoice generated")
	return nil
}

// GetInvoiceUseCase loads a single invoice.
type GetInvoiceUseCase struct {
	invoiceRepo invoice.Repository
}

func NewGetInvoiceUseCase(invoiceRepo invoice.Repository) *GetInvoiceUseCase {
	return &GetInvoiceUseCase{invoiceRepo: invoiceRepo}
}

func (uc *GetInvoiceUseCase) Execute(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}
