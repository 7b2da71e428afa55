package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aushadhi-pos/aushadhi-pos/internal/app"
	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/crm"
	jobmetrics "github.com/aushadhi-pos/aushadhi-pos/internal/jobs"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/cache"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/db"
	"github.com/aushadhi-pos/aushadhi-pos/internal/sales"
	"github.com/aushadhi-pos/aushadhi-pos/internal/settings"
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

	catalogRepo := catalog.NewRepository(pool)
	salesRepo := sales.NewRepository(pool)
	settingsRepo := settings.NewRepository(pool)
	settingsService := settings.NewService(settingsRepo, redisClient, logger, cfg.SettingsCacheTTL)
	crmService := crm.NewService(salesRepo, settingsService)

	metrics := jobmetrics.NewMetrics(prometheus.DefaultRegisterer)

	refillJob := jobs.NewRefillScanJob(pool, crmService, logger, metrics)
	lowStockJob := jobs.NewLowStockScanJob(pool, catalogRepo, logger, metrics)

	refillTask, err := jobs.NewRefillScanTask(jobs.ScanPayload{})
	if err != nil {
		logger.Error("build refill scan task", slog.Any("error", err))
		os.Exit(1)
	}
	lowStockTask, err := jobs.NewLowStockScanTask(jobs.ScanPayload{})
	if err != nil {
		logger.Error("build low stock scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:    asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:       logger,
		RefillScan:   refillJob,
		LowStockScan: lowStockJob,
		Cron: []jobs.CronEntry{
			{Spec: "0 8 * * *", Task: refillTask},
			{Spec: "30 8 * * *", Task: lowStockTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
