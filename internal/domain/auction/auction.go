package auction

import (
	"time"

	"github.com/auctionworks/settlement/internal/domain/errors"
	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

// Status represents the auction status in the state machine
type Status string

const (
	StatusPending        Status = "Pending"
	StatusActive         Status = "Active"
	StatusCompleted      Status = "Completed"
	StatusReserveNotMet  Status = "ReserveNotMet"
	StatusCancelled      Status = "Cancelled"
	StatusPaymentPending Status = "PaymentPending"
	StatusPaid           Status = "Paid"
	StatusFailed         Status = "Failed"
	StatusDisputed       Status = "Disputed"
)

// Settlement policy constants, fixed per the payment terms attached to a
// winning bid. These are not computed.
const (
	PaymentDueDays      = 7
	Currency            = "USD"
	PaymentInstructions = "Please pay the amount due within 7 days."
	RefundPolicy        = "Refunds are available within 30 days of payment."
)

// Item holds the auctioned item description embedded in the auction.
type Item struct {
	ID          uuid.UUID
	Name        string
	Description string
	ImageURL    string
}

// Auction is the aggregate owned exclusively by the auction service.
// Other services observe it only through denormalized event snapshots.
type Auction struct {
	ID             uuid.UUID
	ReservePrice   int64
	Seller         string
	Winner         *string
	SoldAmount     *float64
	CurrentHighBid *int64
	AuctionEnd     time.Time
	Status         Status
	Item           Item
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates an auction in the given initial status. An empty status
// defaults to Pending.
func New(id uuid.UUID, seller string, reservePrice int64, auctionEnd time.Time, initial Status, item Item) (*Auction, error) {
	if seller == "" {
		return nil, errors.NewValidationError("seller", "cannot be empty")
	}
	if reservePrice < 0 {
		return nil, errors.NewValidationError("reservePrice", "cannot be negative")
	}
	if item.Name == "" {
		return nil, errors.NewValidationError("item.name", "cannot be empty")
	}
	if initial == "" {
		initial = StatusPending
	}
	if initial != StatusPending && initial != StatusActive {
		return nil, errors.NewValidationError("status", "initial status must be Pending or Active")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	now := time.Now().UTC()
	return &Auction{
		ID:           id,
		ReservePrice: reservePrice,
		Seller:       seller,
		AuctionEnd:   auctionEnd,
		Status:       initial,
		Item:         item,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanTransitionTo checks if the auction can transition to the given status
func (a *Auction) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {
			StatusActive,
			StatusCancelled,
		},
		StatusActive: {
			StatusCompleted,
			StatusReserveNotMet,
			StatusCancelled,
		},
		StatusCompleted: {
			StatusPaymentPending,
			StatusPaid,
			StatusFailed,
			StatusDisputed,
		},
		StatusPaymentPending: {
			StatusPaid,
			StatusFailed,
			StatusDisputed,
		},
		StatusReserveNotMet: {},
		StatusCancelled:     {},
		StatusPaid:          {},
		StatusFailed:        {},
		StatusDisputed:      {},
	}

	allowed, exists := transitions[a.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the auction to a new status
func (a *Auction) TransitionTo(newStatus Status) error {
	if !a.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(a.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}
	a.Status = newStatus
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// IsOpen reports whether the auction still accepts item updates and
// deletion, i.e. settlement has not begun.
func (a *Auction) IsOpen() bool {
	return a.Status == StatusPending || a.Status == StatusActive
}

// IsSettled reports whether the auction reached a terminal settlement state.
func (a *Auction) IsSettled() bool {
	switch a.Status {
	case StatusPaid, StatusFailed, StatusDisputed, StatusReserveNotMet, StatusCancelled:
		return true
	}
	return false
}

// UpdateItem mutates item fields only; status and bid data are never
// touched by the update command. Permitted only while open.
func (a *Auction) UpdateItem(name, description, imageURL string) error {
	if !a.IsOpen() {
		return errors.ErrAuctionNotOpen
	}
	if name != "" {
		a.Item.Name = name
	}
	if description != "" {
		a.Item.Description = description
	}
	if imageURL != "" {
		a.Item.ImageURL = imageURL
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordHighBid tracks the running high bid from BidPlaced events. Stale
// or lower amounts are ignored so the update is safe under duplication
// and reordering.
func (a *Auction) RecordHighBid(amount int64) bool {
	if a.CurrentHighBid != nil && amount <= *a.CurrentHighBid {
		return false
	}
	a.CurrentHighBid = &amount
	a.UpdatedAt = time.Now().UTC()
	return true
}

// ApplyFinished settles the auction from an AuctionFinished payload. It is
// a pure function of (current state, payload): applying the same event
// twice yields the same state and reports sold=false the second time so
// the caller does not emit a second winner notification.
func (a *Auction) ApplyFinished(itemSold bool, winner string, amount *float64) (saleRecorded bool, err error) {
	if a.IsSettled() || a.Status == StatusCompleted {
		return false, nil
	}

	if itemSold {
		a.Winner = &winner
		a.SoldAmount = amount
	}

	target := StatusReserveNotMet
	if a.SoldAmount != nil && *a.SoldAmount > float64(a.ReservePrice) {
		target = StatusCompleted
	}
	if a.Status == StatusPending {
		// Finished before activation still settles; walk through Active.
		if err := a.TransitionTo(StatusActive); err != nil {
			return false, err
		}
	}
	if err := a.TransitionTo(target); err != nil {
		return false, err
	}
	return itemSold, nil
}

// WinnerSnapshot builds the immutable AuctionWinnerNotified payload from
// the finished event and the auction's own item details. Payment terms are
// policy constants.
func (a *Auction) WinnerSnapshot(fin event.AuctionFinished, now time.Time) event.AuctionWinnerNotified {
	return event.AuctionWinnerNotified{
		AuctionID: a.ID,
		ItemDetails: event.ItemDetails{
			ItemID:      a.Item.ID.String(),
			Name:        a.Item.Name,
			Description: a.Item.Description,
		},
		HighestBidder:         fin.HighestBidder,
		WinningBidAmount:      fin.WinningBidAmount,
		PaymentTerms:          event.PaymentTerms{DueDate: now.AddDate(0, 0, PaymentDueDays).Format("2006-01-02"), Currency: Currency},
		AuctionCompletionDate: now,
		BillingAddress:        fin.BillingAddress,
		InvoiceDate:           now,
		PaymentInstructions:   PaymentInstructions,
		RefundPolicy:          RefundPolicy,
	}
}

// PaymentStatusFor maps a PaymentProcessed status string to the auction
// status it implies. Unrecognized values park the auction in
// PaymentPending rather than failing the message.
func PaymentStatusFor(paymentStatus string) Status {
	switch paymentStatus {
	case "Success":
		return StatusPaid
	case "Failed":
		return StatusFailed
	case "Disputed":
		return StatusDisputed
	default:
		return StatusPaymentPending
	}
}

// ApplyPaymentStatus advances the auction from a PaymentProcessed event.
// Payments against an auction that was never marked Completed are refused;
// the caller routes those to the dead-letter store.
func (a *Auction) ApplyPaymentStatus(paymentStatus string) error {
	target := PaymentStatusFor(paymentStatus)
	if a.Status == target {
		return nil // duplicate delivery, already applied
	}
	return a.TransitionTo(target)
}
