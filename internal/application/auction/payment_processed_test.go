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

func paymentEvent(auctionID uuid.UUID, status string) event.PaymentProcessed {
	return event.PaymentProcessed{
		PaymentID:   uuid.New(),
		AuctionID:   auctionID,
		InvoiceID:   uuid.New(),
		AmountPaid:  157.5,
		PaymentDate: time.Now().UTC(),
		Status:      status,
	}
}

func completedAuction(t *testing.T, repo *testutil.MockAuctionRepository) *auction.Auction {
	t.Helper()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(-time.Minute))
	if err := a.TransitionTo(auction.StatusCompleted); err != nil {
		t.Fatalf("setup: %v", err)
	}
	repo.AddAuction(a)
	return a
}

func TestPaymentProcessed_SuccessMarksPaid(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := completedAuction(t, auctionRepo)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(a.ID, "Success"))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusPaid {
		t.Errorf("expected Paid, got %s", a.Status)
	}
}

func TestPaymentProcessed_FailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := completedAuction(t, auctionRepo)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(a.ID, "Failed"))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusFailed {
		t.Errorf("expected Failed, got %s", a.Status)
	}
}

func TestPaymentProcessed_UnrecognizedStatusParksPending(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := completedAuction(t, auctionRepo)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(a.ID, "Refunded"))

	if err := h.Handle(ctx, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != auction.StatusPaymentPending {
		t.Errorf("expected PaymentPending, got %s", a.Status)
	}
}

func TestPaymentProcessed_DuplicateDeliveryIsNoOp(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := completedAuction(t, auctionRepo)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	payload := paymentEvent(a.ID, "Success")

	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypePaymentProcessed, payload)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypePaymentProcessed, payload)); err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if a.Status != auction.StatusPaid {
		t.Errorf("expected Paid, got %s", a.Status)
	}
}

func TestPaymentProcessed_BeforeCompletionParked(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(time.Hour))
	auctionRepo.AddAuction(a)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(a.ID, "Success"))

	err := h.Handle(ctx, env)
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonPrematurePayment {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonPrematurePayment, dlErr.Reason)
	}
	if a.Status != auction.StatusActive {
		t.Errorf("premature payment must not move the auction, got %s", a.Status)
	}
}

func TestPaymentProcessed_TerminalAuctionParkedAsInvalid(t *testing.T) {
	ctx := context.Background()
	auctionRepo := testutil.NewMockAuctionRepository()
	a := testutil.NewTestAuction("seller-1", 100, time.Now().Add(-time.Minute))
	a.Status = auction.StatusPaid
	auctionRepo.AddAuction(a)

	h := auctionApp.NewPaymentProcessedHandler(auctionRepo, zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(a.ID, "Failed"))

	err := h.Handle(ctx, env)
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonInvalidTransition {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonInvalidTransition, dlErr.Reason)
	}
}

func TestPaymentProcessed_UnknownAuctionParked(t *testing.T) {
	ctx := context.Background()
	h := auctionApp.NewPaymentProcessedHandler(testutil.NewMockAuctionRepository(), zerolog.Nop())
	env := testutil.MustEnvelope(t, event.TypePaymentProcessed, paymentEvent(uuid.New(), "Success"))

	err := h.Handle(ctx, env)
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonUnknownAggregate {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonUnknownAggregate, dlErr.Reason)
	}
}
