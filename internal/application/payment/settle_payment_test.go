package payment_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	paymentApp "github.com/auctionworks/settlement/internal/application/payment"
	"github.com/auctionworks/settlement/internal/domain/deadletter"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/domain/payment"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/infrastructure/gateway"
	"github.com/auctionworks/settlement/internal/testutil"
	"github.com/auctionworks/settlement/pkg/retry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// stubGateway scripts the gateway outcome and counts calls.
type stubGateway struct {
	result  *gateway.ChargeResult
	err     error
	calls   int
	lastReq gateway.ChargeRequest
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.calls++
	g.lastReq = req
	return g.result, g.err
}

func grantedLocks() paymentApp.LockFactory {
	return func(key string) paymentApp.Lock {
		return &testutil.MockLock{Acquired: true}
	}
}

func fastGatewayRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2.0}
}

func newSettleHandler(repo *testutil.MockPaymentRepository, outbox *testutil.MockOutboxRepository, gw gateway.Gateway, locks paymentApp.LockFactory) *paymentApp.SettlePaymentHandler {
	return paymentApp.NewSettlePaymentHandler(repo, outbox, gw, locks, time.Second, fastGatewayRetry(), zerolog.Nop(), testutil.NewTestMetrics())
}

func TestSettlePayment_SuccessfulCharge(t *testing.T) {
	ctx := context.Background()
	paymentRepo := testutil.NewMockPaymentRepository()
	outbox := testutil.NewMockOutboxRepository()
	gw := &stubGateway{result: &gateway.ChargeResult{Reference: "ref-1", Status: "success"}}
	h := newSettleHandler(paymentRepo, outbox, gw, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recorded, err := paymentRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if recorded.Status != payment.StatusSuccess {
		t.Errorf("expected Success, got %s", recorded.Status)
	}
	if recorded.AmountPaid != 210.0 {
		t.Errorf("expected total 210 (amount plus taxes), got %v", recorded.AmountPaid)
	}
	if recorded.GatewayReference != "ref-1" {
		t.Errorf("expected gateway reference stored, got %q", recorded.GatewayReference)
	}
	if gw.lastReq.AmountCents != 21000 {
		t.Errorf("expected 21000 cents on the wire, got %d", gw.lastReq.AmountCents)
	}
	if gw.lastReq.InvoiceID != inv.InvoiceID.String() {
		t.Errorf("invoice id must be the gateway idempotency key, got %q", gw.lastReq.InvoiceID)
	}
	if len(outbox.EntriesOfType(event.TypePaymentProcessed)) != 1 {
		t.Error("expected payment.processed to be staged")
	}
}

func TestSettlePayment_DeclineRecordedAsFailed(t *testing.T) {
	ctx := context.Background()
	paymentRepo := testutil.NewMockPaymentRepository()
	outbox := testutil.NewMockOutboxRepository()
	gw := &stubGateway{
		result: &gateway.ChargeResult{Reference: "ref-2", Status: "failed", ErrorMessage: "insufficient funds"},
		err:    domainErrors.ErrGatewayDeclined,
	}
	h := newSettleHandler(paymentRepo, outbox, gw, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("decline must not error the handler: %v", err)
	}

	recorded, err := paymentRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if recorded.Status != payment.StatusFailed {
		t.Errorf("expected Failed, got %s", recorded.Status)
	}
	if recorded.FailureReason != "insufficient funds" {
		t.Errorf("expected gateway message preserved, got %q", recorded.FailureReason)
	}
	if len(outbox.EntriesOfType(event.TypePaymentProcessed)) != 1 {
		t.Error("failed settlement still emits payment.processed")
	}
}

func TestSettlePayment_TimeoutRecordedAsFailed(t *testing.T) {
	ctx := context.Background()
	paymentRepo := testutil.NewMockPaymentRepository()
	outbox := testutil.NewMockOutboxRepository()
	gw := &stubGateway{err: domainErrors.ErrGatewayTimeout}
	h := newSettleHandler(paymentRepo, outbox, gw, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("timeout must not error the handler: %v", err)
	}

	recorded, err := paymentRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if recorded.Status != payment.StatusFailed {
		t.Errorf("expected Failed, got %s", recorded.Status)
	}
	if len(outbox.EntriesOfType(event.TypePaymentProcessed)) != 1 {
		t.Error("timed-out settlement still emits payment.processed")
	}
}

func TestSettlePayment_UnreachableGatewayRecordedAsFailed(t *testing.T) {
	ctx := context.Background()
	paymentRepo := testutil.NewMockPaymentRepository()
	outbox := testutil.NewMockOutboxRepository()
	gw := &stubGateway{err: errors.New("connection refused")}
	h := newSettleHandler(paymentRepo, outbox, gw, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("an unreachable gateway must not error the handler: %v", err)
	}

	if gw.calls != 3 {
		t.Errorf("expected the charge to be retried before giving up, got %d calls", gw.calls)
	}
	recorded, err := paymentRepo.GetByInvoiceID(ctx, inv.InvoiceID)
	if err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
	if recorded.Status != payment.StatusFailed {
		t.Errorf("expected Failed, got %s", recorded.Status)
	}
	if !strings.Contains(recorded.FailureReason, "unavailable") {
		t.Errorf("expected unavailability recorded in the failure reason, got %q", recorded.FailureReason)
	}
	if len(outbox.EntriesOfType(event.TypePaymentProcessed)) != 1 {
		t.Error("unreachable-gateway settlement still emits payment.processed")
	}
}

func TestSettlePayment_AlreadySettledSkipsGateway(t *testing.T) {
	ctx := context.Background()
	paymentRepo := testutil.NewMockPaymentRepository()
	outbox := testutil.NewMockOutboxRepository()
	gw := &stubGateway{result: &gateway.ChargeResult{Reference: "ref-1"}}
	h := newSettleHandler(paymentRepo, outbox, gw, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	paymentRepo.AddTransaction(payment.NewTransaction(inv.AuctionID, inv.InvoiceID, 210.0, payment.StatusSuccess, "ref-old", ""))

	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("settled invoice must never reach the gateway, got %d calls", gw.calls)
	}
	if len(outbox.Entries) != 0 {
		t.Errorf("no event may be re-emitted, got %d entries", len(outbox.Entries))
	}
}

func TestSettlePayment_LockContentionRetries(t *testing.T) {
	ctx := context.Background()
	gw := &stubGateway{result: &gateway.ChargeResult{Reference: "ref-1"}}
	locks := func(key string) paymentApp.Lock {
		return &testutil.MockLock{Acquired: false}
	}
	h := newSettleHandler(testutil.NewMockPaymentRepository(), testutil.NewMockOutboxRepository(), gw, locks)

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv))
	if !errors.Is(err, domainErrors.ErrLockAcquisitionFailed) {
		t.Fatalf("expected ErrLockAcquisitionFailed, got %v", err)
	}
	if gw.calls != 0 {
		t.Error("contended invoice must not reach the gateway")
	}
}

func TestSettlePayment_LockReleasedAfterCharge(t *testing.T) {
	ctx := context.Background()
	lock := &testutil.MockLock{Acquired: true}
	gw := &stubGateway{result: &gateway.ChargeResult{Reference: "ref-1"}}
	h := newSettleHandler(testutil.NewMockPaymentRepository(), testutil.NewMockOutboxRepository(), gw, func(string) paymentApp.Lock { return lock })

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	if err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lock.Released {
		t.Error("lock must be released after settlement")
	}
}

func TestSettlePayment_MissingIdentityParked(t *testing.T) {
	ctx := context.Background()
	h := newSettleHandler(testutil.NewMockPaymentRepository(), testutil.NewMockOutboxRepository(), &stubGateway{}, grantedLocks())

	inv := testutil.NewTestInvoiceGenerated(200.0, 10.0)
	inv.InvoiceID = uuid.Nil

	err := h.Handle(ctx, testutil.MustEnvelope(t, event.TypeInvoiceGenerated, inv))
	var dlErr *deadletter.Error
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected deadletter error, got %v", err)
	}
	if dlErr.Reason != deadletter.ReasonUndecodable {
		t.Errorf("expected reason %s, got %s", deadletter.ReasonUndecodable, dlErr.Reason)
	}
}
