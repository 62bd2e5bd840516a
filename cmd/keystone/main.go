package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/keystone-billing/keystone/internal/app"
	"github.com/keystone-billing/keystone/internal/billing/estimates"
	"github.com/keystone-billing/keystone/internal/billing/invoices"
	"github.com/keystone-billing/keystone/internal/billing/payterms"
	"github.com/keystone-billing/keystone/internal/observability"
	"github.com/keystone-billing/keystone/internal/platform/cache"
	"github.com/keystone-billing/keystone/internal/platform/db"
	"github.com/keystone-billing/keystone/internal/projects"
	"github.com/keystone-billing/keystone/internal/sequence"
	"github.com/keystone-billing/keystone/internal/settings"
	"github.com/keystone-billing/keystone/jobs"
	"github.com/keystone-billing/keystone/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, settings cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	defaultTaxRate, err := decimal.NewFromString(cfg.DefaultTaxRate)
	if err != nil {
		logger.Error("parse DEFAULT_TAX_RATE", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo, redisClient, settings.Defaults{
		EstimatePrefix: cfg.EstimatePrefix,
		EstimateFloor:  cfg.EstimateFloor,
		InvoicePrefix:  cfg.InvoicePrefix,
		InvoiceFloor:   cfg.InvoiceFloor,
		TaxRate:        defaultTaxRate,
		CompanyName:    cfg.CompanyName,
	}, logger)

	sequencer := sequence.New(sequence.NewPGStore(pool))

	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, logger)

	estimatesRepo := estimates.NewRepository(pool)
	estimatesService := estimates.NewService(estimatesRepo, sequencer, settingsService)

	paytermsRepo := payterms.NewRepository(pool)
	paytermsService := payterms.NewService(paytermsRepo, estimatesService, logger)

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, sequencer, settingsService, estimatesService, paytermsService, logger)

	if err := seedSequences(ctx, sequencer, settingsService, estimatesRepo, invoicesRepo); err != nil {
		logger.Error("seed document sequences", slog.Any("error", err))
		os.Exit(1)
	}

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportService := report.NewService(reportClient, estimatesService, invoicesService, projectsService, settingsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		ProjectsHandler:  projects.NewHandler(logger, projectsService),
		EstimatesHandler: estimates.NewHandler(logger, estimatesService),
		PayTermsHandler:  payterms.NewHandler(logger, paytermsService),
		InvoicesHandler:  invoices.NewHandler(logger, invoicesService, metrics),
		SettingsHandler:  settings.NewHandler(logger, settingsService),
		ReportHandler:    report.NewHandler(logger, reportService, metrics),
		JobsHandler:      jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// seedSequences fast-forwards each document series past numbers already
// present in the tables, so an imported legacy series never collides with
// freshly issued numbers.
func seedSequences(ctx context.Context, sequencer *sequence.Sequencer, st *settings.Service, est, inv sequence.NumberSource) error {
	estPrefix, _, err := st.EstimateNumbering(ctx)
	if err != nil {
		return err
	}
	if err := sequencer.SeedFrom(ctx, est, estPrefix); err != nil {
		return err
	}
	invPrefix, _, err := st.InvoiceNumbering(ctx)
	if err != nil {
		return err
	}
	return sequencer.SeedFrom(ctx, inv, invPrefix)
}
