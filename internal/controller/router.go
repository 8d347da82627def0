package controller

import (
	"time"

	"github.com/auctionworks/settlement/internal/infrastructure/config"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	customMW "github.com/auctionworks/settlement/internal/middleware"
	"github.com/auctionworks/settlement/internal/repository/postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterDeps wires one service's HTTP surface. Controllers left nil are
// not mounted; each binary sets only the ones it serves.
type RouterDeps struct {
	ServiceName     string
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	IdempotencyRepo *postgres.IdempotencyRepository
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig

	Auctions      *AuctionController
	Bids          *BidController
	Invoices      *InvoiceController
	Payments      *PaymentController
	Notifications *NotificationController
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing(deps.ServiceName))
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(30 * time.Second))

			if deps.Auctions != nil {
				idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo)
				r.With(idempotencyMW).Post("/auctions", deps.Auctions.Create)
				r.Get("/auctions", deps.Auctions.List)
				r.Get("/auctions/{id}", deps.Auctions.Get)
				r.Put("/auctions/{id}", deps.Auctions.Update)
				r.Delete("/auctions/{id}", deps.Auctions.Delete)
			}

			if deps.Bids != nil {
				idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo)
				r.With(idempotencyMW).Post("/auctions/{id}/bids", deps.Bids.Place)
				r.Get("/auctions/{id}/bids", deps.Bids.List)
			}

			if deps.Invoices != nil {
				r.Get("/invoices/{id}", deps.Invoices.Get)
			}

			if deps.Payments != nil {
				r.Get("/auctions/{id}/payments", deps.Payments.ListForAuction)
			}
		})

		// SSE connections are long-lived; no request timeout.
		if deps.Notifications != nil {
			r.Get("/events", deps.Notifications.StreamAll)
			r.Get("/auctions/{id}/events", deps.Notifications.StreamAuction)
		}
	})

	return r
}
