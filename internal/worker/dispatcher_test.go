package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/testutil"
	"github.com/auctionworks/settlement/internal/worker"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPublisher fails the first n publish calls, then succeeds.
type scriptedPublisher struct {
	failures int
	calls    int
}

func (p *scriptedPublisher) PublishEnvelope(ctx context.Context, env *event.Envelope) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	return nil
}

func pendingEntry(t *testing.T) *outbox.Entry {
	t.Helper()
	entry, err := outbox.NewEntry("payment", uuid.New(), event.TypePaymentProcessed, map[string]string{"invoiceId": uuid.NewString()})
	require.NoError(t, err)
	return entry
}

func fastDispatcherConfig() worker.DispatcherConfig {
	return worker.DispatcherConfig{
		PollInterval:      time.Millisecond,
		BatchSize:         10,
		PublishMaxRetries: 3,
		PublishRetryDelay: time.Millisecond,
	}
}

func TestDispatcher_RetriesTransientPublishFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entry := pendingEntry(t)
	outboxRepo := testutil.NewMockOutboxRepository()
	polls := 0
	outboxRepo.GetPendingFunc = func(ctx context.Context, limit int) ([]*outbox.Entry, error) {
		polls++
		if polls == 1 {
			return []*outbox.Entry{entry}, nil
		}
		return nil, nil
	}
	var published []uuid.UUID
	outboxRepo.MarkPublishedFunc = func(ctx context.Context, id uuid.UUID) error {
		published = append(published, id)
		cancel()
		return nil
	}
	failed := 0
	outboxRepo.MarkFailedFunc = func(ctx context.Context, id uuid.UUID) error {
		failed++
		return nil
	}

	publisher := &scriptedPublisher{failures: 2}
	d := worker.NewDispatcher(
		testutil.NewMockTransactionManager(), outboxRepo, publisher,
		fastDispatcherConfig(), zerolog.Nop(), testutil.NewTestMetrics(),
	)
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, 3, publisher.calls, "publish should be retried until it succeeds")
	assert.Equal(t, []uuid.UUID{entry.ID}, published)
	assert.Zero(t, failed, "a recovered publish must not count against the entry")
}

func TestDispatcher_ExhaustedPublishMarksFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entry := pendingEntry(t)
	outboxRepo := testutil.NewMockOutboxRepository()
	polls := 0
	outboxRepo.GetPendingFunc = func(ctx context.Context, limit int) ([]*outbox.Entry, error) {
		polls++
		if polls == 1 {
			return []*outbox.Entry{entry}, nil
		}
		return nil, nil
	}
	published := 0
	outboxRepo.MarkPublishedFunc = func(ctx context.Context, id uuid.UUID) error {
		published++
		return nil
	}
	var failed []uuid.UUID
	outboxRepo.MarkFailedFunc = func(ctx context.Context, id uuid.UUID) error {
		failed = append(failed, id)
		cancel()
		return nil
	}

	publisher := &scriptedPublisher{failures: 100}
	d := worker.NewDispatcher(
		testutil.NewMockTransactionManager(), outboxRepo, publisher,
		fastDispatcherConfig(), zerolog.Nop(), testutil.NewTestMetrics(),
	)
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, 3, publisher.calls, "publish attempts are bounded per cycle")
	assert.Equal(t, []uuid.UUID{entry.ID}, failed)
	assert.Zero(t, published)
}
