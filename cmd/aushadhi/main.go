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

	"github.com/aushadhi-pos/aushadhi-pos/internal/app"
	"github.com/aushadhi-pos/aushadhi-pos/internal/auth"
	"github.com/aushadhi-pos/aushadhi-pos/internal/billing"
	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
	"github.com/aushadhi-pos/aushadhi-pos/internal/observability"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/cache"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/db"
	"github.com/aushadhi-pos/aushadhi-pos/internal/reports"
	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
	"github.com/aushadhi-pos/aushadhi-pos/internal/subscription"
	"github.com/aushadhi-pos/aushadhi-pos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	issuer := auth.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, issuer, redisClient)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo, redisClient, logger, cfg.SettingsCacheTTL)
	settingsHandler := settings.NewHandler(logger, settingsService)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo, catalogRepo, settingsService, metrics, logger)
	salesHandler := sales.NewHandler(logger, salesService)

	billingService := billing.NewService(salesService, settingsService)
	billingHandler := billing.NewHandler(logger, billingService)

	crmService := crm.NewService(salesRepo, settingsService)
	crmHandler := crm.NewHandler(logger, crmService)

	razorpay := subscription.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	subscriptionRepo := subscription.NewRepository(pool)
	subscriptionService := subscription.NewService(subscriptionRepo, razorpay)
	subscriptionHandler := subscription.NewHandler(logger, subscriptionService)
	subscriptionGate := &subscription.Gate{Service: subscriptionService, Logger: logger}

	reportsService := reports.NewService(catalogRepo, salesRepo, crmService)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AuthHandler:         authHandler,
		AuthMiddleware:      authMiddleware,
		SubscriptionGate:    subscriptionGate,
		CatalogHandler:      catalogHandler,
		SalesHandler:        salesHandler,
		SettingsHandler:     settingsHandler,
		BillingHandler:      billingHandler,
		CRMHandler:          crmHandler,
		SubscriptionHandler: subscriptionHandler,
		ReportsHandler:      reportsHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
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
