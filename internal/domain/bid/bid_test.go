package bid_test

import (
	"testing"
	"time"

	"github.com/auctionworks/settlement/internal/domain/bid"
	domainErrors "github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func openSnapshot(reservePrice int64) *bid.AuctionSnapshot {
	return &bid.AuctionSnapshot{
		ID:           uuid.New(),
		Seller:       "seller-1",
		ReservePrice: reservePrice,
		AuctionEnd:   time.Now().Add(time.Hour),
	}
}

func int64Ptr(v int64) *int64 { return &v }

// --- Validate ---

func TestValidate_Valid(t *testing.T) {
	snap := openSnapshot(100)
	assert.NoError(t, bid.Validate(snap, "bidder-1", 50, time.Now()))
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	snap := openSnapshot(100)
	assert.ErrorIs(t, bid.Validate(snap, "bidder-1", 0, time.Now()), domainErrors.ErrInvalidAmount)
	assert.ErrorIs(t, bid.Validate(snap, "bidder-1", -10, time.Now()), domainErrors.ErrInvalidAmount)
}

func TestValidate_AmountCheckedBeforeAuction(t *testing.T) {
	// A bad amount is rejected even when the auction is unknown.
	assert.ErrorIs(t, bid.Validate(nil, "bidder-1", 0, time.Now()), domainErrors.ErrInvalidAmount)
}

func TestValidate_UnknownAuction(t *testing.T) {
	assert.ErrorIs(t, bid.Validate(nil, "bidder-1", 50, time.Now()), domainErrors.ErrAuctionNotFound)
}

func TestValidate_DeletedAuction(t *testing.T) {
	snap := openSnapshot(100)
	snap.Deleted = true
	assert.ErrorIs(t, bid.Validate(snap, "bidder-1", 50, time.Now()), domainErrors.ErrAuctionNotFound)
}

func TestValidate_SelfBid(t *testing.T) {
	snap := openSnapshot(100)
	assert.ErrorIs(t, bid.Validate(snap, "seller-1", 50, time.Now()), domainErrors.ErrSelfBid)
}

func TestValidate_BiddingClosed(t *testing.T) {
	snap := openSnapshot(100)
	snap.AuctionEnd = time.Now().Add(-time.Minute)
	assert.ErrorIs(t, bid.Validate(snap, "bidder-1", 50, time.Now()), domainErrors.ErrBiddingClosed)
}

func TestValidate_BidAtExactEnd(t *testing.T) {
	snap := openSnapshot(100)
	now := time.Now()
	snap.AuctionEnd = now
	assert.ErrorIs(t, bid.Validate(snap, "bidder-1", 50, now), domainErrors.ErrBiddingClosed)
}

// --- Rank ---

func TestRank_FirstBidAboveReserve(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusAccepted, bid.Rank(snap, 150, nil))
}

func TestRank_FirstBidBelowReserve(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusAcceptedBelowReserve, bid.Rank(snap, 50, nil))
}

func TestRank_AtReserveIsBelowReserve(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusAcceptedBelowReserve, bid.Rank(snap, 100, nil))
}

func TestRank_TiesLose(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusTooLow, bid.Rank(snap, 200, int64Ptr(200)))
}

func TestRank_LowerThanHighest(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusTooLow, bid.Rank(snap, 150, int64Ptr(200)))
}

func TestRank_OvertakesHighest(t *testing.T) {
	snap := openSnapshot(100)
	assert.Equal(t, bid.StatusAccepted, bid.Rank(snap, 250, int64Ptr(200)))
}

func TestRank_OvertakesButBelowReserve(t *testing.T) {
	snap := openSnapshot(300)
	assert.Equal(t, bid.StatusAcceptedBelowReserve, bid.Rank(snap, 250, int64Ptr(200)))
}

// --- Status ---

func TestStatus_Accepted(t *testing.T) {
	assert.True(t, bid.StatusAccepted.Accepted())
	assert.True(t, bid.StatusAcceptedBelowReserve.Accepted())
	assert.False(t, bid.StatusTooLow.Accepted())
	assert.False(t, bid.StatusFinished.Accepted())
}

func TestNew_ResolvedStatus(t *testing.T) {
	auctionID := uuid.New()
	now := time.Now()
	b := bid.New(auctionID, "bidder-1", 150, bid.StatusAccepted, now)
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, auctionID, b.AuctionID)
	assert.Equal(t, bid.StatusAccepted, b.Status)
	assert.Equal(t, now, b.BidTime)
}
