package postgres

import (
	"context"
	"fmt"

	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeadLetterRepository struct {
	pool *pgxpool.Pool
}

func NewDeadLetterRepository(pool *pgxpool.Pool) *DeadLetterRepository {
	return &DeadLetterRepository{pool: pool}
}

func (r *DeadLetterRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *DeadLetterRepository) Insert(ctx context.Context, entry *deadletter.Entry) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO dead_letters (id, message_id, consumer, event_type, reason, detail, payload, occurred_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (message_id, consumer) DO NOTHING`,
		entry.ID, entry.MessageID, entry.Consumer, entry.EventType,
		entry.Reason, entry.Detail, entry.Payload, entry.OccurredAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

func (r *DeadLetterRepository) List(ctx context.Context, consumer string, limit int) ([]*deadletter.Entry, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, message_id, consumer, event_type, reason, detail, payload, occurred_at, created_at
		 FROM dead_letters WHERE consumer = $1 ORDER BY created_at DESC LIMIT $2`,
		consumer, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var entries []*deadletter.Entry
	for rows.Next() {
		entry := &deadletter.Entry{}
		err := rows.Scan(
			&entry.ID, &entry.MessageID, &entry.Consumer, &entry.EventType,
			&entry.Reason, &entry.Detail, &entry.Payload, &entry.OccurredAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
