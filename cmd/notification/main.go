package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	notificationApp "github.com/auctionworks/settlement/internal/application/notification"
	"github.com/auctionworks/settlement/internal/bootstrap"
	"github.com/auctionworks/settlement/internal/controller"
	"github.com/auctionworks/settlement/internal/event"
	infraRedis "github.com/auctionworks/settlement/internal/infrastructure/redis"
	"github.com/auctionworks/settlement/internal/notify"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/auctionworks/settlement/internal/worker"
	"golang.org/x/sync/errgroup"
)

// streamedEvents is every settlement event type the notification
// service relays to SSE clients.
var streamedEvents = []string{
	event.TypeAuctionCreated,
	event.TypeAuctionUpdated,
	event.TypeAuctionDeleted,
	event.TypeAuctionFinished,
	event.TypeAuctionWinnerNotified,
	event.TypeBidPlaced,
	event.TypeInvoiceGenerated,
	event.TypePaymentProcessed,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "notification-service", "notification")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	deadLetterRepo := postgres.NewDeadLetterRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	producer := infraRedis.NewStreamProducer(app.Redis)

	// --- Hub and handler ---
	hub := notify.NewHub()
	defer hub.Close()
	broadcastH := notificationApp.NewBroadcastHandler(hub, app.Logger)

	// --- Consumers, one per event stream ---
	workerCfg := app.Config.Worker
	const consumerName = "notification-service"

	newConsumer := func(eventType string) *worker.Consumer {
		stream := infraRedis.NewStreamConsumer(
			app.Redis,
			infraRedis.StreamName(eventType),
			consumerName,
			app.Config.InstanceID,
			workerCfg.BatchSize,
			workerCfg.BlockDuration,
		)
		return worker.NewConsumer(stream, producer, txManager, inboxRepo, deadLetterRepo, broadcastH.Handle, worker.ConsumerConfig{
			Name:         consumerName,
			Shards:       workerCfg.Shards,
			ClaimMinIdle: workerCfg.ClaimMinIdle,
			ShardKey:     worker.AuctionShardKey,
		}, app.Logger, app.Metrics)
	}

	consumers := make([]*worker.Consumer, 0, len(streamedEvents))
	for _, eventType := range streamedEvents {
		consumers = append(consumers, newConsumer(eventType))
	}

	// --- HTTP server ---
	router := controller.NewRouter(controller.RouterDeps{
		ServiceName:     "notification-service",
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		Notifications:   controller.NewNotificationController(hub),
	})

	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: app.Config.Server.ReadTimeout,
		// No write timeout: SSE connections stay open indefinitely.
		IdleTimeout: app.Config.Server.IdleTimeout,
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
