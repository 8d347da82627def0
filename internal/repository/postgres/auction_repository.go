package postgres

import (
	"context"
	"fmt"

	"github.com/auctionworks/settlement/internal/domain/auction"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const auctionColumns = `id, reserve_price, seller, winner, sold_amount, current_high_bid,
	auction_end, status, item_id, item_name, item_description, item_image_url,
	version, created_at, updated_at`

func (r *AuctionRepository) Create(ctx context.Context, a *auction.Auction) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO auctions (`+auctionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.ReservePrice, a.Seller, a.Winner, a.SoldAmount, a.CurrentHighBid,
		a.AuctionEnd, string(a.Status), a.Item.ID, a.Item.Name, a.Item.Description, a.Item.ImageURL,
		a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert auction: %w", err)
	}
	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT `+auctionColumns+` FROM auctions WHERE id = $1`, id)
	return scanAuction(row)
}

// Update writes the aggregate back guarded by the version column. The row
// version is bumped on success; a stale version means a concurrent writer
// won and the caller should reload and retry.
func (r *AuctionRepository) Update(ctx context.Context, a *auction.Auction) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE auctions
		 SET reserve_price = $2, seller = $3, winner = $4, sold_amount = $5,
		     current_high_bid = $6, auction_end = $7, status = $8,
		     item_name = $9, item_description = $10, item_image_url = $11,
		     version = version + 1, updated_at = $12
		 WHERE id = $1 AND version = $13`,
		a.ID, a.ReservePrice, a.Seller, a.Winner, a.SoldAmount,
		a.CurrentHighBid, a.AuctionEnd, string(a.Status),
		a.Item.Name, a.Item.Description, a.Item.ImageURL,
		a.UpdatedAt, a.Version,
	)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOptimisticLockFailed
	}
	a.Version++
	return nil
}

func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrAuctionNotFound
	}
	return nil
}

func (r *AuctionRepository) List(ctx context.Context, filter auction.ListFilter) ([]*auction.Auction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE 1=1`
	args := []any{}
	if filter.Seller != "" {
		args = append(args, filter.Seller)
		query += fmt.Sprintf(" AND seller = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	return auctions, rows.Err()
}

func scanAuction(row pgx.Row) (*auction.Auction, error) {
	a := &auction.Auction{}
	var status string
	err := row.Scan(
		&a.ID, &a.ReservePrice, &a.Seller, &a.Winner, &a.SoldAmount, &a.CurrentHighBid,
		&a.AuctionEnd, &status, &a.Item.ID, &a.Item.Name, &a.Item.Description, &a.Item.ImageURL,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("scan auction: %w", err)
	}
	a.Status = auction.Status(status)
	return a, nil
}
