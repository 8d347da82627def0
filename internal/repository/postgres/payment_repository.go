package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const paymentColumns = `id, auction_id, invoice_id, amount_paid, payment_date, status, gateway_reference, failure_reason`

// Insert records the settlement attempt outcome. invoice_id is unique:
// a redelivered InvoiceGenerated finds the stored transaction and gets
// created=false, so the settlement result is emitted exactly once per
// invoice.
func (r *PaymentRepository) Insert(ctx context.Context, tx *payment.Transaction) (*payment.Transaction, bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payment_transactions (`+paymentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (invoice_id) DO NOTHING`,
		tx.ID, tx.AuctionID, tx.InvoiceID, tx.AmountPaid, tx.PaymentDate,
		string(tx.Status), tx.GatewayReference, tx.FailureReason,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert payment transaction: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return tx, true, nil
	}
	existing, err := r.GetByInvoiceID(ctx, tx.InvoiceID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *PaymentRepository) GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*payment.Transaction, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payment_transactions WHERE invoice_id = $1`, invoiceID)
	return scanPayment(row)
}

func (r *PaymentRepository) ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*payment.Transaction, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payment_transactions WHERE auction_id = $1 ORDER BY payment_date DESC`,
		auctionID)
	if err != nil {
		return nil, fmt.Errorf("list payment transactions: %w", err)
	}
	defer rows.Close()

	var txs []*payment.Transaction
	for rows.Next() {
		tx, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanPayment(row pgx.Row) (*payment.Transaction, error) {
	tx := &payment.Transaction{}
	var status string
	err := row.Scan(
		&tx.ID, &tx.AuctionID, &tx.InvoiceID, &tx.AmountPaid, &tx.PaymentDate,
		&status, &tx.GatewayReference, &tx.FailureReason,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment transaction: %w", err)
	}
	tx.Status = payment.Status(status)
	return tx, nil
}
