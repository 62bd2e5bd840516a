package report

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keystone-billing/keystone/internal/observability"
	"github.com/keystone-billing/keystone/internal/platform/httpx"
)

// Handler exposes the document rendering endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler builds a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.service.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) estimatePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.EstimateSnapshot(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, r, snap)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.InvoiceSnapshot(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.servePDF(w, r, snap)
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, snap Snapshot) {
	pdf, err := h.service.RenderPDF(r.Context(), snap)
	if err != nil {
		h.logger.Error("render pdf", slog.Any("error", err), slog.String("number", snap.Number))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	if h.metrics != nil {
		h.metrics.RendersGenerated.WithLabelValues(snap.Kind).Inc()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", snap.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) estimateHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.EstimateSnapshot(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.serveHTML(w, snap)
}

func (h *Handler) invoiceHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.InvoiceSnapshot(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.serveHTML(w, snap)
}

func (h *Handler) serveHTML(w http.ResponseWriter, snap Snapshot) {
	html, err := RenderHTML(snap)
	if err != nil {
		h.logger.Error("render html", slog.Any("error", err), slog.String("number", snap.Number))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document ID")
		return 0, false
	}
	return id, true
}
