package gateway

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/infrastructure/config"
	"github.com/sony/gobreaker/v2"
)

// BreakerGateway wraps a Gateway with a circuit breaker so a struggling
// gateway sheds load fast instead of tying up settlement workers on
// requests that will time out anyway.
type BreakerGateway struct {
	inner   Gateway
	breaker *gobreaker.CircuitBreaker[*ChargeResult]
}

func NewBreakerGateway(inner Gateway, cfg *config.GatewayConfig) *BreakerGateway {
	threshold := cfg.CircuitBreakerThreshold
	if threshold == 0 {
		threshold = 10
	}
	timeout := cfg.CircuitBreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &BreakerGateway{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker[*ChargeResult](gobreaker.Settings{
			Name:        inner.Name(),
			MaxRequests: 10,
			Interval:    60 * time.Second,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= threshold && failureRatio >= 0.6
			},
			// A decline is a business outcome, not gateway trouble; it
			// must not open the circuit.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, domainErrors.ErrGatewayDeclined)
			},
		}),
	}
}

func (g *BreakerGateway) Name() string { return g.inner.Name() }

func (g *BreakerGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	return g.breaker.Execute(func() (*ChargeResult, error) {
		return g.inner.Charge(ctx, req)
	})
}

var _ Gateway = (*BreakerGateway)(nil)
