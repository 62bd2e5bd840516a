package estimates

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/estimates", h.list)
	r.Post("/estimates", h.create)
	r.Get("/estimates/{id}", h.get)
	r.Put("/estimates/{id}", h.update)
	r.Delete("/estimates/{id}", h.delete)
	r.Post("/estimates/{id}/submit", h.submit)
	r.Post("/estimates/{id}/reject", h.reject)
}
