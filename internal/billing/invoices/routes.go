package invoices

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Post("/invoices/from-estimate", h.fromEstimate)
	r.Post("/invoices/from-pay-terms", h.fromPayTerms)
	r.Get("/invoices/{id}", h.get)
	r.Put("/invoices/{id}", h.update)
	r.Delete("/invoices/{id}", h.delete)
	r.Post("/invoices/{id}/send", h.send)
	r.Post("/invoices/{id}/cancel", h.cancel)
	r.Get("/invoices/{id}/payments", h.listPayments)
	r.Post("/invoices/{id}/payments", h.postPayment)
	r.Put("/payments/{paymentID}", h.amendPayment)
	r.Delete("/payments/{paymentID}", h.voidPayment)
}
