package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	bidApp "github.com/auctionworks/settlement/internal/application/bid"
	"github.com/auctionworks/settlement/internal/bootstrap"
	"github.com/auctionworks/settlement/internal/controller"
	"github.com/auctionworks/settlement/internal/event"
	infraRedis "github.com/auctionworks/settlement/internal/infrastructure/redis"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/auctionworks/settlement/internal/worker"
	"golang.org/x/sync/errgroup"
)

// The bidding service owns the append-only bid ledger. It serves the
// bid API and maintains its auction read model from the auction owner's
// lifecycle events.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "bidding-service", "bidding")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	bidRepo := postgres.NewBidRepository(app.Pool)
	snapshotRepo := postgres.NewSnapshotRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	deadLetterRepo := postgres.NewDeadLetterRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	producer := infraRedis.NewStreamProducer(app.Redis)

	// --- Use cases ---
	placeUC := bidApp.NewPlaceBidUseCase(bidRepo, snapshotRepo, outboxRepo, txManager, app.Metrics)
	listUC := bidApp.NewGetBidsUseCase(bidRepo, snapshotRepo)
	projectionH := bidApp.NewAuctionProjectionHandler(snapshotRepo, app.Logger)

	// --- Consumers ---
	workerCfg := app.Config.Worker
	const consumerName = "bidding-service"

	newConsumer := func(eventType string) *worker.Consumer {
		stream := infraRedis.NewStreamConsumer(
			app.Redis,
			infraRedis.StreamName(eventType),
			consumerName,
			app.Config.InstanceID,
			workerCfg.BatchSize,
			workerCfg.BlockDuration,
		)
		return worker.NewConsumer(stream, producer, txManager, inboxRepo, deadLetterRepo, projectionH.Handle, worker.ConsumerConfig{
			Name:         consumerName,
			Shards:       workerCfg.Shards,
			ClaimMinIdle: workerCfg.ClaimMinIdle,
			ShardKey:     worker.AuctionShardKey,
		}, app.Logger, app.Metrics)
	}

	consumers := []*worker.Consumer{
		newConsumer(event.TypeAuctionCreated),
		newConsumer(event.TypeAuctionUpdated),
		newConsumer(event.TypeAuctionDeleted),
	}

	dispatcher := worker.NewDispatcher(
		txManager, outboxRepo, producer,
		worker.DispatcherConfig{
			PollInterval:      workerCfg.OutboxPollInterval,
			BatchSize:         int(workerCfg.BatchSize),
			PublishMaxRetries: workerCfg.PublishMaxRetries,
			PublishRetryDelay: workerCfg.PublishRetryDelay,
		},
		app.Logger, app.Metrics,
	)

	// --- HTTP server ---
	router := controller.NewRouter(controller.RouterDeps{
		ServiceName:     "bidding-service",
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		Bids:            controller.NewBidController(placeUC, listUC),
	})

	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	for _, c := range consumers {
		c := c
		g.Go(func() error { return c.Run(gCtx) })
	}
	g.Go(func() error { return dispatcher.Run(gCtx) })

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down...")
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Service error")
	}
	app.Logger.Info().Msg("Service exited")
}
