package event

import (
	"time"

	"github.com/google/uuid"
)

// Event type names as they appear on the wire and in outbox rows.
const (
	TypeAuctionCreated        = "auction.created"
	TypeAuctionUpdated        = "auction.updated"
	TypeAuctionDeleted        = "auction.deleted"
	TypeAuctionFinished       = "auction.finished"
	TypeAuctionWinnerNotified = "auction.winner_notified"
	TypeBidPlaced             = "bid.placed"
	TypeInvoiceGenerated      = "invoice.generated"
	TypePaymentProcessed      = "payment.processed"
)

// ItemDetails is an immutable snapshot of the auctioned item, copied into
// events at emission time. Services never share a live item reference.
type ItemDetails struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BidderInfo is an immutable snapshot of the highest bidder.
type BidderInfo struct {
	BidderID string `json:"bidderId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// PaymentTerms carries the due date and currency attached to a winning bid.
type PaymentTerms struct {
	DueDate  string `json:"dueDate"`
	Currency string `json:"currency"`
}

// BidPlaced is emitted by the bid ledger after every successful placement,
// regardless of whether the bid was accepted.
type BidPlaced struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auctionId"`
	Bidder    string    `json:"bidder"`
	BidTime   time.Time `json:"bidTime"`
	Amount    int64     `json:"amount"`
	BidStatus string    `json:"bidStatus"`
}

// AuctionFinished signals the end of an auction. It is produced by an
// external timer, not by any service in this module; the auction owner
// consumes it to settle the final auction state.
type AuctionFinished struct {
	AuctionID             uuid.UUID    `json:"auctionId"`
	ItemDetails           ItemDetails  `json:"itemDetails"`
	HighestBidder         BidderInfo   `json:"highestBidder"`
	WinningBidAmount      *float64     `json:"winningBidAmount"`
	PaymentTerms          PaymentTerms `json:"paymentTerms"`
	AuctionCompletionDate time.Time    `json:"auctionCompletionDate"`
	BillingAddress        string       `json:"billingAddress"`
	InvoiceDate           time.Time    `json:"invoiceDate"`
	PaymentInstructions   string       `json:"paymentInstructions"`
	RefundPolicy          string       `json:"refundPolicy"`
	ItemSold              bool         `json:"itemSold"`
	Winner                string       `json:"winner"`
	Seller                string       `json:"seller"`
	Amount                *float64     `json:"amount"`
}

// AuctionWinnerNotified is the canonical settlement snapshot propagated
// downstream once a sale is recorded. The invoice generator builds the
// invoice from this payload alone, without calling back into the auction
// owner.
type AuctionWinnerNotified struct {
	AuctionID             uuid.UUID    `json:"auctionId"`
	ItemDetails           ItemDetails  `json:"itemDetails"`
	HighestBidder         BidderInfo   `json:"highestBidder"`
	WinningBidAmount      *float64     `json:"winningBidAmount"`
	PaymentTerms          PaymentTerms `json:"paymentTerms"`
	AuctionCompletionDate time.Time    `json:"auctionCompletionDate"`
	BillingAddress        string       `json:"billingAddress"`
	InvoiceDate           time.Time    `json:"invoiceDate"`
	PaymentInstructions   string       `json:"paymentInstructions"`
	RefundPolicy          string       `json:"refundPolicy"`
}

// InvoiceGenerated carries the materialized invoice to the payment settler.
type InvoiceGenerated struct {
	InvoiceID           uuid.UUID    `json:"invoiceId"`
	AuctionID           uuid.UUID    `json:"auctionId"`
	ItemDetails         ItemDetails  `json:"itemDetails"`
	HighestBidder       BidderInfo   `json:"highestBidder"`
	WinningBidAmount    float64      `json:"winningBidAmount"`
	PaymentTerms        PaymentTerms `json:"paymentTerms"`
	InvoiceDate         time.Time    `json:"invoiceDate"`
	BillingAddress      string       `json:"billingAddress"`
	PaymentInstructions string       `json:"paymentInstructions"`
	RefundPolicy        string       `json:"refundPolicy"`
	TaxesAndFees        float64      `json:"taxesAndFees"`
}

// PaymentProcessed reports the terminal outcome of a settlement attempt.
// Status is "Success", "Failed" or "Disputed"; consumers must map any
// other value to a pending state rather than reject the message.
type PaymentProcessed struct {
	PaymentID   uuid.UUID `json:"paymentId"`
	AuctionID   uuid.UUID `json:"auctionId"`
	InvoiceID   uuid.UUID `json:"invoiceId"`
	AmountPaid  float64   `json:"amountPaid"`
	PaymentDate time.Time `json:"paymentDate"`
	Status      string    `json:"status"`
}

// AuctionCreated seeds the bid ledger's auction read model.
type AuctionCreated struct {
	ID           uuid.UUID   `json:"id"`
	ReservePrice int64       `json:"reservePrice"`
	Seller       string      `json:"seller"`
	AuctionEnd   time.Time   `json:"auctionEnd"`
	Status       string      `json:"status"`
	Item         ItemDetails `json:"item"`
}

// AuctionUpdated carries item field changes only; status and bids never
// travel on this event.
type AuctionUpdated struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
}

// AuctionDeleted removes the auction from downstream read models.
type AuctionDeleted struct {
	ID uuid.UUID `json:"id"`
}
