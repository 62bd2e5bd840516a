package report

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/estimates/{id}/pdf", h.estimatePDF)
	r.Get("/estimates/{id}/html", h.estimateHTML)
	r.Get("/invoices/{id}/pdf", h.invoicePDF)
	r.Get("/invoices/{id}/html", h.invoiceHTML)
	r.Get("/render/ping", h.ping)
}
