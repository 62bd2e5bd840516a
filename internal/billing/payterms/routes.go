package payterms

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/estimates/{estimateID}/pay-terms", h.list)
	r.Post("/estimates/{estimateID}/pay-terms", h.generate)
	r.Get("/pay-terms/{id}", h.get)
	r.Post("/pay-terms/{id}/mark-paid", h.markPaid)
}
