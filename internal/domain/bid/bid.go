package bid

import (
	"time"

	"github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/google/uuid"
)

// Status is the terminal ranking outcome of a bid. A bid's status is
// resolved before it is persisted and never changes afterwards.
type Status string

const (
	StatusTooLow               Status = "TooLow"
	StatusAccepted             Status = "Accepted"
	StatusAcceptedBelowReserve Status = "AcceptedBelowReserve"
	StatusFinished             Status = "Finished"
)

// Accepted reports whether the status counts as currently highest.
func (s Status) Accepted() bool {
	return s == StatusAccepted || s == StatusAcceptedBelowReserve
}

// Bid is one row of the append-only ledger per auction.
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	Bidder    string
	Amount    int64
	Status    Status
	BidTime   time.Time
}

// AuctionSnapshot is the bid ledger's local read model of an auction,
// maintained from auction lifecycle events. It carries only what ranking
// needs.
type AuctionSnapshot struct {
	ID           uuid.UUID
	Seller       string
	ReservePrice int64
	AuctionEnd   time.Time
	Deleted      bool
}

// Validate applies the synchronous bid rejections that never enter the
// saga: non-positive amounts, self-bids and bids after auction end.
func Validate(snap *AuctionSnapshot, bidder string, amount int64, now time.Time) error {
	if amount <= 0 {
		return errors.ErrInvalidAmount
	}
	if snap == nil || snap.Deleted {
		return errors.ErrAuctionNotFound
	}
	if snap.Seller == bidder {
		return errors.ErrSelfBid
	}
	if !snap.AuctionEnd.After(now) {
		return errors.ErrBiddingClosed
	}
	return nil
}

// Rank decides the terminal status of a new bid against the current
// highest amount. highest is nil when no prior bid exists. Ties lose:
// only a strictly greater amount is accepted.
func Rank(snap *AuctionSnapshot, amount int64, highest *int64) Status {
	if highest != nil && amount <= *highest {
		return StatusTooLow
	}
	if amount > snap.ReservePrice {
		return StatusAccepted
	}
	return StatusAcceptedBelowReserve
}

// New builds a bid with its status already resolved.
func New(auctionID uuid.UUID, bidder string, amount int64, status Status, now time.Time) *Bid {
	return &Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		Bidder:    bidder,
		Amount:    amount,
		Status:    status,
		BidTime:   now,
	}
}
