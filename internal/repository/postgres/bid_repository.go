package postgres

import (
	"context"
	"fmt"

	"github.com/auctionworks/settlement/internal/domain/bid"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *BidRepository) Insert(ctx context.Context, b *bid.Bid) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO bids (id, auction_id, bidder, amount, status, bid_time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.AuctionID, b.Bidder, b.Amount, string(b.Status), b.BidTime,
	)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

func (r *BidRepository) HighestAmount(ctx context.Context, auctionID uuid.UUID) (*int64, error) {
	var amount int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT amount FROM bids WHERE auction_id = $1 ORDER BY amount DESC LIMIT 1`,
		auctionID,
	).Scan(&amount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("highest bid amount: %w", err)
	}
	return &amount, nil
}

func (r *BidRepository) ListForAuction(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, auction_id, bidder, amount, status, bid_time
		 FROM bids WHERE auction_id = $1 ORDER BY amount DESC`,
		auctionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b := &bid.Bid{}
		var status string
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.Bidder, &b.Amount, &status, &b.BidTime); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		b.Status = bid.Status(status)
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// SnapshotRepository persists the bid ledger's local auction read model.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

func (r *SnapshotRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *SnapshotRepository) Upsert(ctx context.Context, snap *bid.AuctionSnapshot) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO bid_auctions (id, seller, reserve_price, auction_end, deleted)
		 VALUES ($1, $2, $3, $4, false)
		 ON CONFLICT (id) DO UPDATE
		 SET seller = EXCLUDED.seller, reserve_price = EXCLUDED.reserve_price,
		     auction_end = EXCLUDED.auction_end`,
		snap.ID, snap.Seller, snap.ReservePrice, snap.AuctionEnd,
	)
	if err != nil {
		return fmt.Errorf("upsert auction snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	_, err := r.db(ctx).Exec(ctx, `UPDATE bid_auctions SET deleted = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark auction snapshot deleted: %w", err)
	}
	return nil
}

// GetForUpdate locks the snapshot row for the calling transaction. All
// concurrent bids on one auction serialize here, which makes the
// read-highest-then-decide step atomic per auction.
func (r *SnapshotRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error) {
	return r.get(ctx, id, true)
}

func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (*bid.AuctionSnapshot, error) {
	return r.get(ctx, id, false)
}

func (r *SnapshotRepository) get(ctx context.Context, id uuid.UUID, forUpdate bool) (*bid.AuctionSnapshot, error) {
	query := `SELECT id, seller, reserve_price, auction_end, deleted FROM bid_auctions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	snap := &bid.AuctionSnapshot{}
	err := r.db(ctx).QueryRow(ctx, query, id).Scan(
		&snap.ID, &snap.Seller, &snap.ReservePrice, &snap.AuctionEnd, &snap.Deleted,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("get auction snapshot: %w", err)
	}
	return snap, nil
}
