package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func (r *InvoiceRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const invoiceColumns = `id, auction_id, item_id, item_name, item_description,
	bidder_id, bidder_name, bidder_email, winning_amount, taxes_and_fees,
	due_date, currency, completion_date, billing_address, invoice_date,
	instructions, refund_policy, created_at`

// Insert writes the invoice unless one already exists for the same
// auction and bidder. When a duplicate is found the stored invoice is
// returned with created=false, so redelivered winner notifications
// re-emit the original invoice id.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 ON CONFLICT (auction_id, bidder_id) DO NOTHING`,
		inv.ID, inv.AuctionID, inv.ItemDetails.ItemID, inv.ItemDetails.Name, inv.ItemDetails.Description,
		inv.Bidder.BidderID, inv.Bidder.FullName, inv.Bidder.Email, inv.WinningAmount, inv.TaxesAndFees,
		inv.PaymentTerms.DueDate, inv.PaymentTerms.Currency, inv.AuctionCompletionDate, inv.BillingAddress,
		inv.InvoiceDate, inv.PaymentInstructions, inv.RefundPolicy, inv.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert invoice: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return inv, true, nil
	}
	existing, err := r.GetByAuctionAndBidder(ctx, inv.AuctionID, inv.Bidder.BidderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	return scanInvoice(row)
}

func (r *InvoiceRepository) GetByAuctionAndBidder(ctx context.Context, auctionID uuid.UUID, bidderID string) (*invoice.Invoice, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE auction_id = $1 AND bidder_id = $2`,
		auctionID, bidderID)
	return scanInvoice(row)
}

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.AuctionID, &inv.ItemDetails.ItemID, &inv.ItemDetails.Name, &inv.ItemDetails.Description,
		&inv.Bidder.BidderID, &inv.Bidder.FullName, &inv.Bidder.Email, &inv.WinningAmount, &inv.TaxesAndFees,
		&inv.PaymentTerms.DueDate, &inv.PaymentTerms.Currency, &inv.AuctionCompletionDate, &inv.BillingAddress,
		&inv.InvoiceDate, &inv.PaymentInstructions, &inv.RefundPolicy, &inv.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}
	return inv, nil
}
