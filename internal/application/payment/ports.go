package payment

import (
	"context"

	"github.com/auctionworks/settlement/internal/domain/outbox"
)

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxWriter defines the interface for writing to the transactional outbox.
type OutboxWriter interface {
	Insert(ctx context.Context, entry *outbox.Entry) error
}

// Lock is one acquisition attempt on a named mutual exclusion.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LockFactory mints a lock for a key. Settlement takes one lock per
// invoice so two instances never charge the gateway concurrently for
// the same invoice.
type LockFactory func(key string) Lock
