package invoice_test

import (
	"testing"

	"github.com/auctionworks/settlement/internal/domain/invoice"
	"github.com/auctionworks/settlement/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromWinnerNotified(t *testing.T) {
	msg := testutil.NewTestWinnerNotified(uuid.New(), 200.0)

	inv := invoice.FromWinnerNotified(msg)
	assert.NotEqual(t, uuid.Nil, inv.ID)
	assert.Equal(t, msg.AuctionID, inv.AuctionID)
	assert.Equal(t, msg.ItemDetails, inv.ItemDetails)
	assert.Equal(t, msg.HighestBidder, inv.Bidder)
	assert.Equal(t, 200.0, inv.WinningAmount)
	assert.Equal(t, 200.0*invoice.TaxRate, inv.TaxesAndFees)
	assert.Equal(t, msg.PaymentTerms, inv.PaymentTerms)
}

func TestFromWinnerNotified_NilAmountIsZero(t *testing.T) {
	msg := testutil.NewTestWinnerNotified(uuid.New(), 0)
	msg.WinningBidAmount = nil

	inv := invoice.FromWinnerNotified(msg)
	assert.Equal(t, 0.0, inv.WinningAmount)
	assert.Equal(t, 0.0, inv.TaxesAndFees)
}

func TestFromWinnerNotified_FreshIdentityPerCall(t *testing.T) {
	msg := testutil.NewTestWinnerNotified(uuid.New(), 200.0)
	first := invoice.FromWinnerNotified(msg)
	second := invoice.FromWinnerNotified(msg)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestToGenerated(t *testing.T) {
	msg := testutil.NewTestWinnerNotified(uuid.New(), 200.0)
	inv := invoice.FromWinnerNotified(msg)

	out := inv.ToGenerated()
	assert.Equal(t, inv.ID, out.InvoiceID)
	assert.Equal(t, inv.AuctionID, out.AuctionID)
	assert.Equal(t, inv.WinningAmount, out.WinningBidAmount)
	assert.Equal(t, inv.TaxesAndFees, out.TaxesAndFees)
	assert.Equal(t, inv.PaymentTerms, out.PaymentTerms)
	assert.Equal(t, inv.Bidder, out.HighestBidder)
}
