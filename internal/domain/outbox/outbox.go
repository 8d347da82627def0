package outbox

import (
	"encoding/json"
	"time"

	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

// Entry is a durable record of an event to publish, written in the same
// transaction as the state change that produced it. Seq is assigned by
// the database and gives a per-service monotonic dispatch order.
type Entry struct {
	ID            uuid.UUID
	Seq           int64
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Envelope      *event.Envelope
	Status        Status
	RetryCount    int
	MaxRetries    int
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// defaultMaxRetries caps dispatch cycles per entry before the row is
// parked as failed. Bootstrap overrides it from worker configuration.
var defaultMaxRetries = 5

// SetDefaultMaxRetries sets the dispatch cap stamped onto new entries.
func SetDefaultMaxRetries(n int) {
	if n > 0 {
		defaultMaxRetries = n
	}
}

// NewEntry wraps payload into an envelope and builds a pending outbox
// entry for it. The envelope message id is minted here, so redispatching
// the same entry always carries the same id.
func NewEntry(aggregateType string, aggregateID uuid.UUID, eventType string, payload any) (*Entry, error) {
	env, err := event.NewEnvelope(eventType, payload)
	if err != nil {
		return nil, err
	}
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Envelope:      env,
		Status:        StatusPending,
		RetryCount:    0,
		MaxRetries:    defaultMaxRetries,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// MarshalEnvelope returns the envelope as stored in the payload column.
func (e *Entry) MarshalEnvelope() ([]byte, error) {
	return json.Marshal(e.Envelope)
}
