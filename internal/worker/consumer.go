package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/auctionworks/settlement/internal/domain/inbox"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	infraRedis "github.com/auctionworks/settlement/internal/infrastructure/redis"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/auctionworks/settlement/pkg/retry"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// HandlerFunc processes one envelope inside the consumer's transaction.
// Returning nil commits effects and acks the message. Returning a
// *deadletter.Error parks the message. Any other error rolls back and
// the message is retried, then parked once attempts are exhausted.
type HandlerFunc func(ctx context.Context, env *event.Envelope) error

// ShardKeyFunc extracts the serialization key from an envelope. Messages
// with the same key are processed in order by a single goroutine, so
// handlers for one aggregate never race within an instance.
type ShardKeyFunc func(env *event.Envelope) string

type ConsumerConfig struct {
	// Name identifies this consumer in the inbox table. One name per
	// service-and-stream pair; instances share it so deduplication spans
	// the whole consumer group.
	Name string

	Shards        int
	ClaimMinIdle  time.Duration
	ClaimInterval time.Duration
	RetryConfig   retry.Config
	ShardKey      ShardKeyFunc
}

// Consumer drains one stream through an inbox-guarded handler.
type Consumer struct {
	stream      *infraRedis.StreamConsumer
	producer    *infraRedis.StreamProducer
	txManager   *postgres.TxManager
	inbox       inbox.Repository
	deadLetters deadletter.Repository
	handler     HandlerFunc
	cfg         ConsumerConfig
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

func NewConsumer(
	stream *infraRedis.StreamConsumer,
	producer *infraRedis.StreamProducer,
	txManager *postgres.TxManager,
	inboxRepo inbox.Repository,
	deadLetters deadletter.Repository,
	handler HandlerFunc,
	cfg ConsumerConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Consumer {
	if cfg.Shards <= 0 {
		cfg.Shards = 1
	}
	if cfg.ClaimMinIdle <= 0 {
		cfg.ClaimMinIdle = 60 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = cfg.ClaimMinIdle / 2
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.Config{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		}
	}
	return &Consumer{
		stream:      stream,
		producer:    producer,
		txManager:   txManager,
		inbox:       inboxRepo,
		deadLetters: deadLetters,
		handler:     handler,
		cfg:         cfg,
		logger:      logger.With().Str("consumer", cfg.Name).Logger(),
		metrics:     metrics,
	}
}

// Run reads new messages and reclaims stale pending ones until the
// context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.stream.CreateGroup(ctx); err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.runReadLoop(gCtx) })
	g.Go(func() error { return c.runClaimLoop(gCtx) })
	return g.Wait()
}

func (c *Consumer) runReadLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		streams, err := c.stream.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("Failed to read from stream")
			time.Sleep(1 * time.Second)
			continue
		}

		for _, stream := range streams {
			c.processBatch(ctx, stream.Messages)
		}
	}
}

func (c *Consumer) runClaimLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.ClaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		messages, err := c.stream.AutoClaim(ctx, c.cfg.ClaimMinIdle)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("Failed to claim stale messages")
			continue
		}
		if len(messages) > 0 {
			c.logger.Info().Int("count", len(messages)).Msg("Reclaimed stale pending messages")
			c.processBatch(ctx, messages)
		}
	}
}

// processBatch fans messages out over shard buckets. Within a bucket
// messages run in order; buckets run concurrently. The bucket index is
// derived from the shard key, so all messages for one aggregate land in
// the same bucket.
func (c *Consumer) processBatch(ctx context.Context, messages []redis.XMessage) {
	buckets := make([][]redis.XMessage, c.cfg.Shards)
	for _, msg := range messages {
		idx := c.shardIndex(msg)
		buckets[idx] = append(buckets[idx], msg)
	}

	var g errgroup.Group
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		bucket := bucket
		g.Go(func() error {
			for _, msg := range bucket {
				c.processMessage(ctx, msg)
			}
			return nil
		})
	}
	g.Wait()
}

func (c *Consumer) shardIndex(msg redis.XMessage) int {
	key := ""
	if raw, ok := msg.Values["payload"].(string); ok {
		env := &event.Envelope{}
		if err := json.Unmarshal([]byte(raw), env); err == nil && c.cfg.ShardKey != nil {
			key = c.cfg.ShardKey(env)
		}
	}
	if key == "" {
		key = msg.ID
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32()) % c.cfg.Shards
}

func (c *Consumer) processMessage(ctx context.Context, msg redis.XMessage) {
	start := time.Now()
	streamName := c.stream.Stream()

	raw, _ := msg.Values["payload"].(string)
	env := &event.Envelope{}
	if err := json.Unmarshal([]byte(raw), env); err != nil || env.MessageID == uuid.Nil {
		detail := "missing message id"
		if err != nil {
			detail = err.Error()
		}
		c.park(ctx, env, []byte(raw), &deadletter.Error{
			Reason: deadletter.ReasonUndecodable,
			Detail: detail,
		})
		c.ack(ctx, msg.ID)
		return
	}

	var duplicate bool
	err := retry.Do(ctx, c.cfg.RetryConfig, func() error {
		duplicate = false
		return c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			fresh, err := c.inbox.MarkProcessed(txCtx, env.MessageID, c.cfg.Name, env.EventType)
			if err != nil {
				return err
			}
			if !fresh {
				duplicate = true
				return nil
			}
			return c.handler(txCtx, env)
		})
	})

	switch {
	case err == nil && duplicate:
		c.metrics.InboxDuplicates.WithLabelValues(streamName).Inc()
		c.logger.Debug().
			Str("message_id", env.MessageID.String()).
			Str("event_type", env.EventType).
			Msg("Duplicate message absorbed")
	case err == nil:
		c.metrics.WorkerMessagesProcessed.WithLabelValues(streamName, "success").Inc()
	default:
		var dlErr *deadletter.Error
		if !errors.As(err, &dlErr) {
			dlErr = &deadletter.Error{
				Reason: deadletter.ReasonRetriesExhausted,
				Detail: err.Error(),
			}
		}
		c.park(ctx, env, []byte(raw), dlErr)
	}

	c.metrics.WorkerProcessingDuration.WithLabelValues(streamName).Observe(time.Since(start).Seconds())
	c.ack(ctx, msg.ID)
}

// park records the message in the dead-letter store and mirrors it to
// the DLQ stream. The store insert is idempotent per (message, consumer),
// so a reclaimed poison message is parked once.
func (c *Consumer) park(ctx context.Context, env *event.Envelope, payload []byte, dlErr *deadletter.Error) {
	entry := deadletter.New(env.MessageID, c.cfg.Name, env.EventType, dlErr.Reason, dlErr.Detail, payload, env.OccurredAt)
	if err := c.deadLetters.Insert(ctx, entry); err != nil {
		c.logger.Error().Err(err).
			Str("message_id", env.MessageID.String()).
			Msg("Failed to store dead letter")
		return
	}
	if err := c.producer.PublishToDLQ(ctx, env.MessageID.String(), c.cfg.Name, dlErr.Reason, payload); err != nil {
		c.logger.Error().Err(err).
			Str("message_id", env.MessageID.String()).
			Msg("Failed to publish to DLQ stream")
	}
	c.metrics.DeadLetters.WithLabelValues(c.stream.Stream(), dlErr.Reason).Inc()
	c.metrics.WorkerMessagesProcessed.WithLabelValues(c.stream.Stream(), "dead_letter").Inc()
	c.logger.Warn().
		Str("message_id", env.MessageID.String()).
		Str("event_type", env.EventType).
		Str("reason", dlErr.Reason).
		Str("detail", dlErr.Detail).
		Msg("Message parked in dead-letter store")
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.stream.Ack(ctx, msgID); err != nil {
		c.logger.Error().Err(err).Str("stream_msg_id", msgID).Msg("Failed to ack message")
	}
}
