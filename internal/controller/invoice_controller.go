package controller

import (
	"net/http"

	invoiceApp "github.com/auctionworks/settlement/internal/application/invoice"
	"github.com/go-chi/chi/v5"
)

// InvoiceController exposes read access to materialized invoices.
type InvoiceController struct {
	getUC *invoiceApp.GetInvoiceUseCase
}

func NewInvoiceController(getUC *invoiceApp.GetInvoiceUseCase) *InvoiceController {
	return &InvoiceController{getUC: getUC}
}

// Get handles GET /api/v1/invoices/{id}
func (h *InvoiceController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	inv, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}
