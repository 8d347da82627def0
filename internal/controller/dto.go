package controller

import (
	"time"

	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/auctionworks/settlement/internal/domain/bid"
	"github.com/auctionworks/settlement/internal/domain/invoice"
	"github.com/auctionworks/settlement/internal/domain/payment"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (validation tags, string IDs).
// Controllers convert them to application commands before calling use cases.

// CreateAuctionRequest holds the input for creating an auction.
type CreateAuctionRequest struct {
	Seller          string    `json:"seller" validate:"required"`
	ReservePrice    int64     `json:"reserve_price" validate:"gte=0"`
	AuctionEnd      time.Time `json:"auction_end" validate:"required"`
	Status          string    `json:"status" validate:"omitempty,oneof=Pending Active"`
	ItemName        string    `json:"item_name" validate:"required"`
	ItemDescription string    `json:"item_description"`
	ItemImageURL    string    `json:"item_image_url" validate:"omitempty,url"`
}

// UpdateAuctionRequest mutates item fields only.
type UpdateAuctionRequest struct {
	Seller          string `json:"seller" validate:"required"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	ItemImageURL    string `json:"item_image_url" validate:"omitempty,url"`
}

// DeleteAuctionRequest identifies the caller for the ownership check.
type DeleteAuctionRequest struct {
	Seller string `json:"seller" validate:"required"`
}

// PlaceBidRequest holds the input for placing a bid.
type PlaceBidRequest struct {
	Bidder string `json:"bidder" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// --- Response DTOs ---

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// AuctionResponse represents an auction in API responses.
type AuctionResponse struct {
	ID             string    `json:"id"`
	Seller         string    `json:"seller"`
	ReservePrice   int64     `json:"reserve_price"`
	Winner         *string   `json:"winner,omitempty"`
	SoldAmount     *float64  `json:"sold_amount,omitempty"`
	CurrentHighBid *int64    `json:"current_high_bid,omitempty"`
	AuctionEnd     time.Time `json:"auction_end"`
	Status         string    `json:"status"`
	ItemName       string    `json:"item_name"`
	ItemDesc       string    `json:"item_description"`
	ItemImageURL   string    `json:"item_image_url,omitempty"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAuctionResponse(a *auction.Auction) AuctionResponse {
	return AuctionResponse{
		ID:             a.ID.String(),
		Seller:         a.Seller,
		ReservePrice:   a.ReservePrice,
		Winner:         a.Winner,
		SoldAmount:     a.SoldAmount,
		CurrentHighBid: a.CurrentHighBid,
		AuctionEnd:     a.AuctionEnd,
		Status:         string(a.Status),
		ItemName:       a.Item.Name,
		ItemDesc:       a.Item.Description,
		ItemImageURL:   a.Item.ImageURL,
		Version:        a.Version,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// BidResponse represents a bid in API responses.
type BidResponse struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	BidTime   time.Time `json:"bid_time"`
}

func toBidResponse(b *bid.Bid) BidResponse {
	return BidResponse{
		ID:        b.ID.String(),
		AuctionID: b.AuctionID.String(),
		Bidder:    b.Bidder,
		Amount:    b.Amount,
		Status:    string(b.Status),
		BidTime:   b.BidTime,
	}
}

// InvoiceResponse represents an invoice in API responses.
type InvoiceResponse struct {
	ID             string    `json:"id"`
	AuctionID      string    `json:"auction_id"`
	ItemName       string    `json:"item_name"`
	BidderID       string    `json:"bidder_id"`
	BidderEmail    string    `json:"bidder_email"`
	WinningAmount  float64   `json:"winning_amount"`
	TaxesAndFees   float64   `json:"taxes_and_fees"`
	Currency       string    `json:"currency"`
	DueDate        string    `json:"due_date"`
	BillingAddress string    `json:"billing_address"`
	InvoiceDate    time.Time `json:"invoice_date"`
	Instructions   string    `json:"instructions"`
	RefundPolicy   string    `json:"refund_policy"`
}

func toInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             inv.ID.String(),
		AuctionID:      inv.AuctionID.String(),
		ItemName:       inv.ItemDetails.Name,
		BidderID:       inv.Bidder.BidderID,
		BidderEmail:    inv.Bidder.Email,
		WinningAmount:  inv.WinningAmount,
		TaxesAndFees:   inv.TaxesAndFees,
		Currency:       inv.PaymentTerms.Currency,
		DueDate:        inv.PaymentTerms.DueDate,
		BillingAddress: inv.BillingAddress,
		InvoiceDate:    inv.InvoiceDate,
		Instructions:   inv.PaymentInstructions,
		RefundPolicy:   inv.RefundPolicy,
	}
}

// PaymentResponse represents a settlement attempt in API responses.
type PaymentResponse struct {
	ID               string    `json:"id"`
	AuctionID        string    `json:"auction_id"`
	InvoiceID        string    `json:"invoice_id"`
	AmountPaid       float64   `json:"amount_paid"`
	PaymentDate      time.Time `json:"payment_date"`
	Status           string    `json:"status"`
	GatewayReference string    `json:"gateway_reference,omitempty"`
	FailureReason    string    `json:"failure_reason,omitempty"`
}

func toPaymentResponse(t *payment.Transaction) PaymentResponse {
	return PaymentResponse{
		ID:               t.ID.String(),
		AuctionID:        t.AuctionID.String(),
		InvoiceID:        t.InvoiceID.String(),
		AmountPaid:       t.AmountPaid,
		PaymentDate:      t.PaymentDate,
		Status:           string(t.Status),
		GatewayReference: t.GatewayReference,
		FailureReason:    t.FailureReason,
	}
}
