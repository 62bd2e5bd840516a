package payterms

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keystone-billing/keystone/internal/platform/httpx"
)

// Handler exposes the pay-term endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	estimateID, ok := parseParam(w, r, "estimateID")
	if !ok {
		return
	}
	terms, err := h.service.List(r.Context(), estimateID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pay_terms": terms})
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	estimateID, ok := parseParam(w, r, "estimateID")
	if !ok {
		return
	}
	var req GenerateTermsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	terms, err := h.service.Generate(r.Context(), estimateID, req)
	if err != nil {
		h.logger.Error("generate pay terms", slog.Any("error", err), slog.Int64("estimate_id", estimateID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"pay_terms": terms})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	term, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, term)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := parseParam(w, r, "id")
	if !ok {
		return
	}
	term, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		h.logger.Error("mark pay term paid", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, term)
}

func parseParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+name)
		return 0, false
	}
	return id, true
}
