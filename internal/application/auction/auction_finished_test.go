package auction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auctionApp "github.com/auctionworks/settlement/internal/application/auction"
	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func finishedEvent(auctionID uuid.UUID, sold bool, winner string, amount *float64) event.AuctionFinished {
	return event.AuctionFinished{
		AuctionID:        auctionID,
		HighestBidder:    event.BidderInfo{BidderID: winner, FullName: "Ada Lovelace", Email: "ada@example.com"},
		WinningBidAmount: amount,
		ItemSold:         sold,
		Winner:           winner,
		Seller:           "seller-1",
		Amount:           amount,
	}
}

func TestAuctionFinished_SaleStagesWinnerNotification(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	outbox := testutil.NewMockOutboxRepository()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(-time.Minute))
	auctionRepo.AddAuction(a)

	h := auctionApp.NewAuctionFinishedHandler(auctionRepo, outbox, zerolog.Nop(), testutil.NewTestMetrics())
	amount := 150.0
	env := testutil.MustEnvelope(t, event.TypeAuctionFinished, finishedEvent(a.ID, true, "bidder-1", &amount))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusCompleted {
		t.Errorf("expected Completed, got %s", a.Status)
	}
	notified := outbox.EntriesOfType(event.TypeAuctionWinnerNotified)
	if len(notified) != 1 {
		t.Fatalf("expected 1 winner notification, got %d", len(notified))
	}

	var snap event.AuctionWinnerNotified
	if err := notified[0].Envelope.Decode(&snap); err != nil {
		t.Fatalf("decode winner notification: %v", err)
	}
	if snap.AuctionID != a.ID {
		t.Errorf("notification carries wrong auction id")
	}
	if snap.HighestBidder.BidderID != "bidder-1" {
		t.Errorf("notification carries wrong bidder: %+v", snap.HighestBidder)
	}
}

func TestAuctionFinished_ReserveNotMet(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	outbox := testutil.NewMockOutboxRepository()
	a := testutil.NewTestAuction("seller-1", 200, time.Now().Add(-time.Minute))
	auctionRepo.AddAuction(a)

	h := auctionApp.NewAuctionFinishedHandler(auctionRepo, outbox, zerolog.Nop(), testutil.NewTestMetrics())
	env := testutil.MustEnvelope(t, event.TypeAuctionFinished, finishedEvent(a.ID, false, "", nil))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusReserveNotMet {
		t.Errorf("expected ReserveNotMet, got %s", a.Status)
	}
	if len(outbox.Entries) != 0 {
		t.Errorf("no winner notification expected, got %d entries", len(outbox.Entries))
	}
}

func TestAuctionFinished_RedeliveryEmitsNoSecondNotification(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	outbox := testutil.NewMockOutboxRepository()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(-time.Minute))
	auctionRepo.AddAuction(a)

	h := auctionApp.NewAuctionFinishedHandler(auctionRepo, outbox, zerolog.Nop(), testutil.NewTestMetrics())
	amount := 150.0
	payload := finishedEvent(a.ID, true, "bidder-1", &amount)

	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeAuctionFinished, payload)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	// A redelivery that slipped past the inbox (fresh message id).
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeAuctionFinished, payload)); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if got := len(outbox.EntriesOfType(event.TypeAuctionWinnerNotified)); got != 1 {
		t.Errorf("expected exactly 1 winner notification, got %d", got)
	}
	if a.Status != auction.StatusCompleted {
		t.Errorf("expected Completed, got %s", a.Status)
	}
}

func TestAuctionFinished_UnknownAuctionParked(t *testing.T) {
	ctx := context.Background()
	h := auctionApp.NewAuctionFinishedHandler(testutil.NewMockAuctionRepository(), testutil.NewMockOutboxRepository(), zerolog.Nop(), testutil.NewTestMetrics())
	amount := 150.0
	env := testutil.MustEnvelope(t, event.TypeAuctionFinished, finishedEvent(uuid.New(), true, "bidder-1", &amount))

	err := h.Handle(ctx, env)
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonUnknownAggregate {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonUnknownAggregate, dlErr.Reason)
	}
}

func TestAuctionFinished_UndecodableParked(t *testing.T) {
	ctx := context.Background()
	h := auctionApp.NewAuctionFinishedHandler(testutil.NewMockAuctionRepository(), testutil.NewMockOutboxRepository(), zerolog.Nop(), testutil.NewTestMetrics())

	env := &event.Envelope{
		MessageID: uuid.New(),
		EventType: event.TypeAuctionFinished,
		Payload:   []byte(`{"auctionId": false}`),
	}
	err := h.Handle(ctx, env)
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonUndecodable {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonUndecodable, dlErr.Reason)
	}
}

func TestAuctionFinished_CancelledAuctionStaysCancelled(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	outbox := testutil.NewMockOutboxRepository()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(-time.Minute))
	a.Status = auction.StatusCancelled
	auctionRepo.AddAuction(a)

	h := auctionApp.NewAuctionFinishedHandler(auctionRepo, outbox, zerolog.Nop(), testutil.NewTestMetrics())
	amount := 150.0
	env := testutil.MustEnvelope(t, event.TypeAuctionFinished, finishedEvent(a.ID, true, "bidder-1", &amount))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusCancelled {
		t.Errorf("expected Cancelled to be preserved, got %s", a.Status)
	}
	if len(outbox.Entries) != 0 {
		t.Errorf("no notification expected for cancelled auction")
	}
}
