package deadletter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Reasons recorded when a consumer parks a message instead of
// processing or retrying it.
const (
	ReasonUndecodable        = "undecodable_payload"
	ReasonUnknownAggregate   = "unknown_aggregate"
	ReasonPrematurePayment   = "payment_before_completion"
	ReasonInvalidTransition  = "invalid_state_transition"
	ReasonRetriesExhausted   = "retries_exhausted"
	ReasonUnknownEventType   = "unknown_event_type"
)

// Error signals that the message causing it cannot succeed on retry and
// must be parked instead. Handlers return it (usually wrapped) to route
// a message to the dead-letter store.
type Error struct {
	Reason string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return e.Reason + ": " + e.Detail
}

// Entry preserves a message a consumer could not resolve, together with
// enough context to replay it after the cause is fixed.
type Entry struct {
	ID         uuid.UUID
	MessageID  uuid.UUID
	Consumer   string
	EventType  string
	Reason     string
	Detail     string
	Payload    []byte
	OccurredAt time.Time
	CreatedAt  time.Time
}

func New(messageID uuid.UUID, consumer, eventType, reason, detail string, payload []byte, occurredAt time.Time) *Entry {
	return &Entry{
		ID:         uuid.New(),
		MessageID:  messageID,
		Consumer:   consumer,
		EventType:  eventType,
		Reason:     reason,
		Detail:     detail,
		Payload:    payload,
		OccurredAt: occurredAt,
		CreatedAt:  time.Now().UTC(),
	}
}

type Repository interface {
	// Insert parks the message. Duplicate (message_id, consumer) pairs
	// are ignored so a redelivered poison message is parked once.
	Insert(ctx context.Context, entry *Entry) error

	// List returns parked messages for a consumer, newest first.
	List(ctx context.Context, consumer string, limit int) ([]*Entry, error)
}
