package invoice

import (
	"time"

	"github.com/auctionworks/settlement/internal/event"
	"github.com/google/uuid"
)

// TaxRate is the flat taxes-and-fees percentage applied to the winning
// amount. Policy constant, not computed.
const TaxRate = 0.05

// Invoice is an immutable snapshot materialized from an
// AuctionWinnerNotified event. Nothing on it is re-fetched from the
// auction owner after creation.
type Invoice struct {
	ID                    uuid.UUID
	AuctionID             uuid.UUID
	ItemDetails           event.ItemDetails
	Bidder                event.BidderInfo
	WinningAmount         float64
	TaxesAndFees          float64
	PaymentTerms          event.PaymentTerms
	AuctionCompletionDate time.Time
	BillingAddress        string
	InvoiceDate           time.Time
	PaymentInstructions   string
	RefundPolicy          string
	CreatedAt             time.Time
}

// FromWinnerNotified constructs an invoice from the event's embedded
// snapshot, assigning a fresh identity. A nil winning amount is treated
// as zero rather than rejected; the payment settler will fail such a
// payment downstream.
func FromWinnerNotified(msg event.AuctionWinnerNotified) *Invoice {
	amount := 0.0
	if msg.WinningBidAmount != nil {
		amount = *msg.WinningBidAmount
	}
	now := time.Now().UTC()
	return &Invoice{
		ID:                    uuid.New(),
		AuctionID:             msg.AuctionID,
		ItemDetails:           msg.ItemDetails,
		Bidder:                msg.HighestBidder,
		WinningAmount:         amount,
		TaxesAndFees:          amount * TaxRate,
		PaymentTerms:          msg.PaymentTerms,
		AuctionCompletionDate: msg.AuctionCompletionDate,
		BillingAddress:        msg.BillingAddress,
		InvoiceDate:           msg.InvoiceDate,
		PaymentInstructions:   msg.PaymentInstructions,
		RefundPolicy:          msg.RefundPolicy,
		CreatedAt:             now,
	}
}

// ToGenerated builds the InvoiceGenerated event for this invoice.
func (i *Invoice) ToGenerated() event.InvoiceGenerated {
	return event.InvoiceGenerated{
		InvoiceID:           i.ID,
		AuctionID:           i.AuctionID,
		ItemDetails:         i.ItemDetails,
		HighestBidder:       i.Bidder,
		WinningBidAmount:    i.WinningAmount,
		PaymentTerms:        i.PaymentTerms,
		InvoiceDate:         i.InvoiceDate,
		BillingAddress:      i.BillingAddress,
		PaymentInstructions: i.PaymentInstructions,
		RefundPolicy:        i.RefundPolicy,
		TaxesAndFees:        i.TaxesAndFees,
	}
}
