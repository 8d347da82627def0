package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InboxRepository struct {
	pool *pgxpool.Pool
}

func NewInboxRepository(pool *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{pool: pool}
}

func (r *InboxRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// MarkProcessed inserts the (message_id, consumer) pair. A conflict means
// the message was already processed; the zero-row result tells the caller
// to skip the handler's effects. Run inside the handler's transaction so
// the marker and the effects commit or roll back together.
func (r *InboxRepository) MarkProcessed(ctx context.Context, messageID uuid.UUID, consumer, eventType string) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`INSERT INTO inbox (message_id, consumer, event_type, processed_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (message_id, consumer) DO NOTHING`,
		messageID, consumer, eventType,
	)
	if err != nil {
		return false, fmt.Errorf("mark message processed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InboxRepository) Seen(ctx context.Context, messageID uuid.UUID, consumer string) (bool, error) {
	var seen bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inbox WHERE message_id = $1 AND consumer = $2)`,
		messageID, consumer,
	).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("check inbox: %w", err)
	}
	return seen, nil
}
