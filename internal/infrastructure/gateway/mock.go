package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
)

type MockGateway struct {
	name        string
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration
	timeoutRate float64 // 0.0 to 1.0
}

type MockGatewayOption func(*MockGateway)

func WithFailureRate(rate float64) MockGatewayOption {
	return func(g *MockGateway) { g.failureRate = rate }
}

func WithLatency(d time.Duration) MockGatewayOption {
	return func(g *MockGateway) { g.latency = d }
}

func WithTimeoutRate(rate float64) MockGatewayOption {
	return func(g *MockGateway) { g.timeoutRate = rate }
}

func NewMockGateway(name string, opts ...MockGatewayOption) *MockGateway {
	g := &MockGateway{
		name:        name,
		failureRate: 0.0,
		latency:     100 * time.Millisecond,
		timeoutRate: 0.0,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *MockGateway) Name() string { return g.name }

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	// Simulate latency
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Simulate timeout
	if rand.Float64() < g.timeoutRate {
		return nil, domainErrors.ErrGatewayTimeout
	}

	// Simulate decline
	if rand.Float64() < g.failureRate {
		return &ChargeResult{
			Status:       "failed",
			ErrorMessage: fmt.Sprintf("%s: simulated decline for invoice %s", g.name, req.InvoiceID),
		}, domainErrors.ErrGatewayDeclined
	}

	return &ChargeResult{
		Reference: fmt.Sprintf("%s_txn_%s", g.name, uuid.New().String()[:8]),
		Status:    "success",
	}, nil
}

var _ Gateway = (*MockGateway)(nil)
