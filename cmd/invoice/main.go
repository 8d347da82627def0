package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	invoiceApp "github.com/auctionworks/settlement/internal/application/invoice"
	"github.com/auctionworks/settlement/internal/bootstrap"
	"github.com/auctionworks/settlement/internal/controller"
	"github.com/auctionworks/settlement/internal/event"
	infraRedis "github.com/auctionworks/settlement/internal/infrastructure/redis"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/auctionworks/settlement/internal/worker"
	"golang.org/x/sync/errgroup"
)

// The invoice service materializes invoices from winner notifications
// and serves read access to them.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "invoice-service", "invoice")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	invoiceRepo := postgres.NewInvoiceRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	deadLetterRepo := postgres.NewDeadLetterRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	producer := infraRedis.NewStreamProducer(app.Redis)

	// --- Use cases ---
	generateH := invoiceApp.NewGenerateInvoiceHandler(invoiceRepo, outboxRepo, app.Logger, app.Metrics)
	getUC := invoiceApp.NewGetInvoiceUseCase(invoiceRepo)

	// --- Consumer ---
	workerCfg := app.Config.Worker
	const consumerName = "invoice-service"

	stream := infraRedis.NewStreamConsumer(
		app.Redis,
		infraRedis.StreamName(event.TypeAuctionWinnerNotified),
		consumerName,
		app.Config.InstanceID,
		workerCfg.BatchSize,
		workerCfg.BlockDuration,
	)
	consumer := worker.NewConsumer(stream, producer, txManager, inboxRepo, deadLetterRepo, generateH.Handle, worker.ConsumerConfig{
		Name:         consumerName,
		Shards:       workerCfg.Shards,
		ClaimMinIdle: workerCfg.ClaimMinIdle,
		ShardKey:     worker.AuctionShardKey,
	}, app.Logger, app.Metrics)

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
		ServiceName:     "invoice-service",
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		Invoices:        controller.NewInvoiceController(getUC),
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
	g.Go(func() error { return consumer.Run(gCtx) })
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
