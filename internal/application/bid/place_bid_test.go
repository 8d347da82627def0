package bid_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	bidApp "github.com/auctionworks/settlement/internal/application/bid"
	"github.com/auctionworks/settlement/internal/domain/bid"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/auctionworks/settlement/internal/testutil"
	"github.com/google/uuid"
)

func newPlaceBidUseCase(snapshotRepo *testutil.MockSnapshotRepository, bidRepo *testutil.MockBidRepository, outbox *testutil.MockOutboxRepository) *bidApp.PlaceBidUseCase {
	return bidApp.NewPlaceBidUseCase(bidRepo, snapshotRepo, outbox, testutil.NewMockTransactionManager(), testutil.NewTestMetrics())
}

func TestPlaceBid_FirstBidAccepted(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(time.Hour))
	snapshotRepo.AddSnapshot(snap)

	uc := newPlaceBidUseCase(snapshotRepo, bidRepo, outbox)

	placed, err := uc.Execute(ctx, bidApp.PlaceBidCommand{
		AuctionID: snap.ID,
		Bidder:    "bidder-1",
		Amount:    150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placed.Status != bid.StatusAccepted {
		t.Errorf("expected status Accepted, got %s", placed.Status)
	}
	if len(outbox.Entries) != 1 {
		t.Fatalf("expected 1 outbox entry, got %d", len(outbox.Entries))
	}
	if outbox.Entries[0].EventType != event.TypeBidPlaced {
		t.Errorf("expected bid.placed outbox entry, got %s", outbox.Entries[0].EventType)
	}
}

func TestPlaceBid_TooLowStillRecorded(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(time.Hour))
	snapshotRepo.AddSnapshot(snap)
	uc := newPlaceBidUseCase(snapshotRepo, bidRepo, outbox)

	if _, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "bidder-1", Amount: 200}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	placed, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "bidder-2", Amount: 200})
	if err != nil {
		t.Fatalf("tie bid: %v", err)
	}
	if placed.Status != bid.StatusTooLow {
		t.Errorf("expected tie to rank TooLow, got %s", placed.Status)
	}

	// The losing bid is still in the ledger and announced.
	stored, err := bidRepo.ListForAuction(ctx, snap.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 ledger rows, got %d", len(stored))
	}
	if len(outbox.Entries) != 2 {
		t.Errorf("expected 2 outbox entries, got %d", len(outbox.Entries))
	}
}

func TestPlaceBid_BelowReserveAccepted(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 500, time.Now().Add(time.Hour))
	snapshotRepo.AddSnapshot(snap)
	uc := newPlaceBidUseCase(snapshotRepo, bidRepo, outbox)

	placed, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "bidder-1", Amount: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placed.Status != bid.StatusAcceptedBelowReserve {
		t.Errorf("expected AcceptedBelowReserve, got %s", placed.Status)
	}
}

func TestPlaceBid_SelfBidRejected(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(time.Hour))
	snapshotRepo.AddSnapshot(snap)
	uc := newPlaceBidUseCase(snapshotRepo, bidRepo, outbox)

	_, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "seller-1", Amount: 150})
	if err != domainErrors.ErrSelfBid {
		t.Errorf("expected ErrSelfBid, got %v", err)
	}
	if len(outbox.Entries) != 0 {
		t.Errorf("rejected bid must not stage an event, got %d entries", len(outbox.Entries))
	}
}

func TestPlaceBid_ClosedAuctionRejected(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(-time.Minute))
	snapshotRepo.AddSnapshot(snap)
	uc := newPlaceBidUseCase(snapshotRepo, bidRepo, outbox)

	_, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "bidder-1", Amount: 150})
	if err != domainErrors.ErrBiddingClosed {
		t.Errorf("expected ErrBiddingClosed, got %v", err)
	}
}

func TestPlaceBid_UnknownAuction(t *testing.T) {
	ctx := context.Background()
	uc := newPlaceBidUseCase(testutil.NewMockSnapshotRepository(), testutil.NewMockBidRepository(), testutil.NewMockOutboxRepository())

	_, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: uuid.New(), Bidder: "bidder-1", Amount: 150})
	if err != domainErrors.ErrAuctionNotFound {
		t.Errorf("expected ErrAuctionNotFound, got %v", err)
	}
}

func TestPlaceBid_ConcurrentEqualBidsRankOnce(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	bidRepo := testutil.NewMockBidRepository()
	outbox := testutil.NewMockOutboxRepository()

	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(time.Hour))
	snapshotRepo.AddSnapshot(snap)

	// The snapshot row lock serializes transactions on one auction; the
	// mock models that with a mutex around the transactional closure.
	var rowLock sync.Mutex
	txManager := testutil.NewMockTransactionManager()
	txManager.WithTransactionFunc = func(txCtx context.Context, fn func(context.Context) error) error {
		rowLock.Lock()
		defer rowLock.Unlock()
		return fn(txCtx)
	}
	uc := bidApp.NewPlaceBidUseCase(bidRepo, snapshotRepo, outbox, txManager, testutil.NewTestMetrics())

	const bidders = 8
	results := make(chan bid.Status, bidders)
	var wg sync.WaitGroup
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			placed, err := uc.Execute(ctx, bidApp.PlaceBidCommand{
				AuctionID: snap.ID,
				Bidder:    fmt.Sprintf("bidder-%d", n),
				Amount:    150,
			})
			if err != nil {
				t.Errorf("bid %d: %v", n, err)
				return
			}
			results <- placed.Status
		}(i)
	}
	wg.Wait()
	close(results)

	accepted := 0
	for status := range results {
		if status == bid.StatusAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("exactly one of the equal bids may rank Accepted, got %d", accepted)
	}

	stored, err := bidRepo.ListForAuction(ctx, snap.ID)
	if err != nil {
		t.Fatalf("list bids: %v", err)
	}
	if len(stored) != bidders {
		t.Errorf("every bid lands in the ledger, got %d of %d", len(stored), bidders)
	}
}

func TestPlaceBid_DeletedAuction(t *testing.T) {
	ctx := context.Background()
	snapshotRepo := testutil.NewMockSnapshotRepository()
	snap := testutil.NewTestSnapshot("seller-1", 100, time.Now().Add(time.Hour))
	snap.Deleted = true
	snapshotRepo.AddSnapshot(snap)
	uc := newPlaceBidUseCase(snapshotRepo, testutil.NewMockBidRepository(), testutil.NewMockOutboxRepository())

	_, err := uc.Execute(ctx, bidApp.PlaceBidCommand{AuctionID: snap.ID, Bidder: "bidder-1", Amount: 150})
	if err != domainErrors.ErrAuctionNotFound {
		t.Errorf("expected ErrAuctionNotFound, got %v", err)
	}
}
