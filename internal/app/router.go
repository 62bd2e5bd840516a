package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/invoices"
	"github.com/keystone-billing/keystone/internal/billing/payterms"
	"github.com/keystone-billing/keystone/internal/observability"
	"github.com/keystone-billing/keystone/internal/projects"
	"github.com/keystone-billing/keystone/internal/settings"
	"github.com/keystone-billing/keystone/jobs"
	"github.com/keystone-billing/keystone/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ProjectsHandler  *projects.Handler
	EstimatesHandler *estimates.Handler
	PayTermsHandler  *payterms.Handler
	InvoicesHandler  *invoices.Handler
	SettingsHandler  *settings.Handler
	ReportHandler    *report.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Keystone defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.ProjectsHandler.MountRoutes(r)
		params.EstimatesHandler.MountRoutes(r)
		params.PayTermsHandler.MountRoutes(r)
		params.InvoicesHandler.MountRoutes(r)
		params.SettingsHandler.MountRoutes(r)
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
