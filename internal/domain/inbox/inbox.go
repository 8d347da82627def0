package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry marks a message id as processed by one consumer. Rows are written
// on first successful processing and retained; redelivery of the same
// message id is acknowledged without reapplying effects.
type Entry struct {
	MessageID   uuid.UUID
	Consumer    string
	EventType   string
	ProcessedAt time.Time
}

type Repository interface {
	// MarkProcessed records the message id for the consumer inside the
	// handler's transaction. It returns false when the id was already
	// recorded, in which case the handler's effects must not be applied.
	MarkProcessed(ctx context.Context, messageID uuid.UUID, consumer, eventType string) (bool, error)

	// Seen reports whether the message id was already processed.
	Seen(ctx context.Context, messageID uuid.UUID, consumer string) (bool, error)
}
