package controller

import (
	"net/http"

	bidApp "github.com/auctionworks/settlement/internal/application/bid"
	"github.com/go-chi/chi/v5"
)

// BidController handles bid-related HTTP requests.
type BidController struct {
	placeUC *bidApp.PlaceBidUseCase
	listUC  *bidApp.GetBidsUseCase
}

func NewBidController(placeUC *bidApp.PlaceBidUseCase, listUC *bidApp.GetBidsUseCase) *BidController {
	return &BidController{placeUC: placeUC, listUC: listUC}
}

// Place handles POST /api/v1/auctions/{id}/bids. Every bid gets a
// terminal status in the response; a too-low bid is still a created
// ledger row, not an error.
func (h *BidController) Place(w http.ResponseWriter, r *http.Request) {
	auctionID, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req PlaceBidRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	b, err := h.placeUC.Execute(r.Context(), bidApp.PlaceBidCommand{
		AuctionID: auctionID,
		Bidder:    req.Bidder,
		Amount:    req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBidResponse(b))
}

// List handles GET /api/v1/auctions/{id}/bids
func (h *BidController) List(w http.ResponseWriter, r *http.Request) {
	auctionID, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	bids, err := h.listUC.Execute(r.Context(), auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, toBidResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}
