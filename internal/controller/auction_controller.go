package controller

import (
	"net/http"
	"strconv"

	auctionApp "github.com/auctionworks/settlement/internal/application/auction"
	"github.com/auctionworks/settlement/internal/domain/auction"
	"github.com/go-chi/chi/v5"
)

// AuctionController handles auction-related HTTP requests.
type AuctionController struct {
	createUC *auctionApp.CreateAuctionUseCase
	updateUC *auctionApp.UpdateAuctionUseCase
	deleteUC *auctionApp.DeleteAuctionUseCase
	getUC    *auctionApp.GetAuctionUseCase
	listUC   *auctionApp.ListAuctionsUseCase
}

func NewAuctionController(
	createUC *auctionApp.CreateAuctionUseCase,
	updateUC *auctionApp.UpdateAuctionUseCase,
	deleteUC *auctionApp.DeleteAuctionUseCase,
	getUC *auctionApp.GetAuctionUseCase,
	listUC *auctionApp.ListAuctionsUseCase,
) *AuctionController {
	return &AuctionController{
		createUC: createUC,
		updateUC: updateUC,
		deleteUC: deleteUC,
		getUC:    getUC,
		listUC:   listUC,
	}
}

// Create handles POST /api/v1/auctions
func (h *AuctionController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAuctionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.createUC.Execute(r.Context(), auctionApp.CreateAuctionCommand{
		Seller:          req.Seller,
		ReservePrice:    req.ReservePrice,
		AuctionEnd:      req.AuctionEnd,
		InitialStatus:   req.Status,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		ItemImageURL:    req.ItemImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuctionResponse(a))
}

// Get handles GET /api/v1/auctions/{id}
func (h *AuctionController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuctionResponse(a))
}

// List handles GET /api/v1/auctions
func (h *AuctionController) List(w http.ResponseWriter, r *http.Request) {
	filter := auction.ListFilter{
		Seller: r.URL.Query().Get("seller"),
		Status: auction.Status(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	auctions, err := h.listUC.Execute(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, toAuctionResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PUT /api/v1/auctions/{id}
func (h *AuctionController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req UpdateAuctionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	a, err := h.updateUC.Execute(r.Context(), auctionApp.UpdateAuctionCommand{
		AuctionID:       id,
		Seller:          req.Seller,
		ItemName:        req.ItemName,
		ItemDescription: req.ItemDescription,
		ItemImageURL:    req.ItemImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuctionResponse(a))
}

// Delete handles DELETE /api/v1/auctions/{id}
func (h *AuctionController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req DeleteAuctionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.deleteUC.Execute(r.Context(), auctionApp.DeleteAuctionCommand{
		AuctionID: id,
		Seller:    req.Seller,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
