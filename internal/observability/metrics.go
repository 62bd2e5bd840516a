// Package observability wires the Prometheus registry and the billing
// gauges reported by the background jobs.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	PaymentsPosted   prometheus.Counter
	LedgerDrift      prometheus.Gauge
	RemindersQueued  prometheus.Counter
	RendersGenerated *prometheus.CounterVec
}

// NewMetrics initializes the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keystone_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "keystone_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	paymentsPosted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keystone_payments_posted_total",
		Help: "Payments successfully posted to the ledger.",
	})
	ledgerDrift := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "keystone_ledger_drift_invoices",
		Help: "Invoices whose stored paid amount disagrees with their payment rows, per the last integrity scan.",
	})
	remindersQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keystone_invoice_reminders_total",
		Help: "Overdue invoice reminders queued for dispatch.",
	})
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keystone_document_renders_total",
		Help: "Document renders by kind.",
	}, []string{"kind"})
	registry.MustRegister(requests, duration, paymentsPosted, ledgerDrift, remindersQueued, renders)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		PaymentsPosted:   paymentsPosted,
		LedgerDrift:      ledgerDrift,
		RemindersQueued:  remindersQueued,
		RendersGenerated: renders,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
