package worker

import (
	"context"
	"time"

	"github.com/auctionworks/settlement/internal/domain/outbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/auctionworks/settlement/pkg/retry"
	"github.com/rs/zerolog"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EnvelopePublisher pushes one envelope onto its broker stream.
type EnvelopePublisher interface {
	PublishEnvelope(ctx context.Context, env *event.Envelope) error
}

type DispatcherConfig struct {
	PollInterval time.Duration
	BatchSize    int

	// Publish attempts within one dispatch cycle, backed off
	// exponentially. A cycle that still fails counts against the
	// entry's MaxRetries before the row is parked as failed.
	PublishMaxRetries uint
	PublishRetryDelay time.Duration
}

// Dispatcher drains the outbox table into the broker. It claims pending
// entries with row locks held for the poll transaction, publishes each
// envelope with bounded backoff, and marks the row published in the
// same transaction. A crash between publish and mark re-publishes the
// entry with the same message id, which consumers absorb through their
// inbox.
type Dispatcher struct {
	txManager    TxRunner
	outbox       outbox.Repository
	producer     EnvelopePublisher
	interval     time.Duration
	batchSize    int
	publishRetry retry.Config
	logger       zerolog.Logger
	metrics      *observability.Metrics
}

func NewDispatcher(
	txManager TxRunner,
	outboxRepo outbox.Repository,
	producer EnvelopePublisher,
	cfg DispatcherConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.PublishMaxRetries == 0 {
		cfg.PublishMaxRetries = 3
	}
	if cfg.PublishRetryDelay <= 0 {
		cfg.PublishRetryDelay = 100 * time.Millisecond
	}
	return &Dispatcher{
		txManager: txManager,
		outbox:    outboxRepo,
		producer:  producer,
		interval:  cfg.PollInterval,
		batchSize: cfg.BatchSize,
		publishRetry: retry.Config{
			MaxAttempts:  cfg.PublishMaxRetries,
			InitialDelay: cfg.PublishRetryDelay,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
		},
		logger:  logger.With().Str("component", "outbox_dispatcher").Logger(),
		metrics: metrics,
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := d.dispatchBatch(ctx); err != nil {
			d.logger.Error().Err(err).Msg("Outbox dispatch error")
		}
	}
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) error {
	return d.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		entries, err := d.outbox.GetPending(txCtx, d.batchSize)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			publishErr := retry.Do(ctx, d.publishRetry, func() error {
				return d.producer.PublishEnvelope(ctx, entry.Envelope)
			})
			if publishErr != nil {
				d.logger.Error().Err(publishErr).
					Str("outbox_id", entry.ID.String()).
					Str("event_type", entry.EventType).
					Msg("Failed to publish outbox entry")
				d.metrics.OutboxDispatched.WithLabelValues(entry.EventType, "error").Inc()
				if err := d.outbox.MarkFailed(txCtx, entry.ID); err != nil {
					return err
				}
				continue
			}
			if err := d.outbox.MarkPublished(txCtx, entry.ID); err != nil {
				return err
			}
			d.metrics.OutboxDispatched.WithLabelValues(entry.EventType, "success").Inc()
		}
		return nil
	})
}
