package gateway

import (
	"context"
	"testing"
	"time"

	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_AlwaysSucceedsByDefault(t *testing.T) {
	gw := NewMockGateway("mock", WithLatency(0))

	for i := 0; i < 20; i++ {
		result, err := gw.Charge(context.Background(), ChargeRequest{InvoiceID: "inv-1"})
		require.NoError(t, err)
		assert.Equal(t, "success", result.Status)
		assert.NotEmpty(t, result.Reference)
	}
}

func TestMockGateway_FullFailureRateAlwaysDeclines(t *testing.T) {
	gw := NewMockGateway("mock", WithLatency(0), WithFailureRate(1.0))

	result, err := gw.Charge(context.Background(), ChargeRequest{InvoiceID: "inv-1"})

	assert.ErrorIs(t, err, domainErrors.ErrGatewayDeclined)
	require.NotNil(t, result)
	assert.Contains(t, result.ErrorMessage, "inv-1")
}

func TestMockGateway_FullTimeoutRateAlwaysTimesOut(t *testing.T) {
	gw := NewMockGateway("mock", WithLatency(0), WithTimeoutRate(1.0))

	_, err := gw.Charge(context.Background(), ChargeRequest{InvoiceID: "inv-1"})

	assert.ErrorIs(t, err, domainErrors.ErrGatewayTimeout)
}

func TestMockGateway_HonoursContextCancellation(t *testing.T) {
	gw := NewMockGateway("mock", WithLatency(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.Charge(ctx, ChargeRequest{InvoiceID: "inv-1"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
