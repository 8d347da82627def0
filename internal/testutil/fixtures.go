package testutil

import (
	"testing"
	"time"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// NewTestMetrics returns metrics registered against a throwaway registry
// so parallel tests never collide on collector names.
func NewTestMetrics() *observability.Metrics {
	return observability.NewMetrics("test", prometheus.NewRegistry())
}

func NewTestAuction(seller string, reservePrice int64, auctionEnd time.Time) *auction.Auction {
	a, err := auction.New(uuid.New(), seller, reservePrice, auctionEnd, auction.StatusActive, auction.Item{
		ID:          uuid.New(),
		Name:        "vintage synthesizer",
		Description: "monophonic, serviced 2024",
	})
	if err != nil {
		panic(err)
	}
	return a
}

func NewTestSnapshot(seller string, reservePrice int64, auctionEnd time.Time) *bid.AuctionSnapshot {
	return &bid.AuctionSnapshot{
		ID:           uuid.New(),
		Seller:       seller,
		ReservePrice: reservePrice,
		AuctionEnd:   auctionEnd,
	}
}

func NewTestWinnerNotified(auctionID uuid.UUID, amount float64) event.AuctionWinnerNotified {
	now := time.Now().UTC()
	return event.AuctionWinnerNotified{
		AuctionID: auctionID,
		ItemDetails: event.ItemDetails{
			ItemID: uuid.New().String(),
			Name:   "vintage synthesizer",
		},
		HighestBidder: event.BidderInfo{
			BidderID: "bidder-1",
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
		},
		WinningBidAmount: &amount,
		PaymentTerms: event.PaymentTerms{
			DueDate:  now.AddDate(0, 0, 7).Format("2006-01-02"),
			Currency: "USD",
		},
		AuctionCompletionDate: now,
		InvoiceDate:           now,
	}
}

func NewTestInvoiceGenerated(amount, taxes float64) event.InvoiceGenerated {
	now := time.Now().UTC()
	return event.InvoiceGenerated{
		InvoiceID: uuid.New(),
		AuctionID: uuid.New(),
		ItemDetails: event.ItemDetails{
			ItemID: uuid.New().String(),
			Name:   "vintage synthesizer",
		},
		HighestBidder: event.BidderInfo{
			BidderID: "bidder-1",
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
		},
		WinningBidAmount: amount,
		PaymentTerms: event.PaymentTerms{
			DueDate:  now.AddDate(0, 0, 7).Format("2006-01-02"),
			Currency: "USD",
		},
		InvoiceDate:  now,
		TaxesAndFees: taxes,
	}
}

// MustEnvelope wraps payload, failing the test on marshal errors.
func MustEnvelope(t *testing.T, eventType string, payload any) *event.Envelope {
	t.Helper()
	env, err := event.NewEnvelope(eventType, payload)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	return env
}

func Float64Ptr(v float64) *float64 {
	return &v
}

func Int64Ptr(v int64) *int64 {
	return &v
}
