package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	paymentApp "github.com/auctionworks/settlement/internal/application/payment"
	"github.com/auctionworks/settlement/internal/bootstrap"
	"github.com/auctionworks/settlement/internal/controller"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/gateway"
	infraRedis "github.com/auctionworks/settlement/internal/infrastructure/redis"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/auctionworks/settlement/internal/worker"
	"github.com/auctionworks/settlement/pkg/retry"
	"golang.org/x/sync/errgroup"
)

// The payment service charges winning bidders through the payment
// gateway when an invoice is generated, one charge per invoice.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "payment-service", "payment")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	inboxRepo := postgres.NewInboxRepository(app.Pool)
	deadLetterRepo := postgres.NewDeadLetterRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	producer := infraRedis.NewStreamProducer(app.Redis)

	// --- Gateway ---
	gatewayCfg := &app.Config.Gateway
	var gw gateway.Gateway
	if gatewayCfg.SecretKey != "" {
		gw = gateway.NewPaystackGateway(gatewayCfg)
	} else {
		// No credentials configured, charge against the simulator.
		app.Logger.Warn().Msg("No gateway secret key configured, using mock gateway")
		gw = gateway.NewMockGateway("mock")
	}
	gw = gateway.NewBreakerGateway(gw, gatewayCfg)

	locks := func(key string) paymentApp.Lock {
		return infraRedis.NewDistributedLock(app.Redis, key, gatewayCfg.LockTTL)
	}

	// --- Use cases ---
	settleH := paymentApp.NewSettlePaymentHandler(
		paymentRepo, outboxRepo, gw, locks,
		gatewayCfg.RequestTimeout,
		retry.Config{
			MaxAttempts:  gatewayCfg.MaxRetries,
			InitialDelay: gatewayCfg.RetryDelay,
			MaxDelay:     gatewayCfg.RequestTimeout,
			Multiplier:   2.0,
		},
		app.Logger, app.Metrics,
	)
	listUC := paymentApp.NewGetPaymentsUseCase(paymentRepo)

	// --- Consumer ---
	workerCfg := app.Config.Worker
	const consumerName = "payment-service"

	stream := infraRedis.NewStreamConsumer(
		app.Redis,
		infraRedis.StreamName(event.TypeInvoiceGenerated),
		consumerName,
		app.Config.InstanceID,
		workerCfg.BatchSize,
		workerCfg.BlockDuration,
	)
	consumer := worker.NewConsumer(stream, producer, txManager, inboxRepo, deadLetterRepo, settleH.Handle, worker.ConsumerConfig{
		Name:         consumerName,
		Shards:       workerCfg.Shards,
		ClaimMinIdle: workerCfg.ClaimMinIdle,
		ShardKey:     worker.InvoiceShardKey,
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
		ServiceName:     "payment-service",
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		Payments:        controller.NewPaymentController(listUC),
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
		app.Logger.Info().Str("addr", addr).Str("gateway", gw.Name()).Msg("Starting HTTP server")
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
