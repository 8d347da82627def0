package controller

import (
	"net/http"

	paymentApp "github.com/auctionworks/settlement/internal/application/payment"
	"github.com/go-chi/chi/v5"
)

// PaymentController exposes read access to settlement transactions.
type PaymentController struct {
	listUC *paymentApp.GetPaymentsUseCase
}

func NewPaymentController(listUC *paymentApp.GetPaymentsUseCase) *PaymentController {
	return &PaymentController{listUC: listUC}
}

// ListForAuction handles GET /api/v1/auctions/{id}/payments
func (h *PaymentController) ListForAuction(w http.ResponseWriter, r *http.Request) {
	auctionID, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	txs, err := h.listUC.Execute(r.Context(), auctionID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]PaymentResponse, 0, len(txs))
	for _, t := range txs {
		resp = append(resp, toPaymentResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}
