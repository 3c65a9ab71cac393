package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"familybudget/internal/cache"
	"familybudget/internal/cli"
	apphttp "familybudget/internal/http"
	applog "familybudget/internal/log"
	"familybudget/internal/services"
)

func main() {
	bootLogger := cli.SetupLogger("info")
	cli.LoadEnvFile(bootLogger)

	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)
	thresholds := cli.LoadThresholds(logger, cfg.ThresholdsFile)

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Async exports are optional; the API answers 503 on POST /api/exports
	// without a queue.
	var publisher services.ExportPublisher
	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		logger.Warn("AMQP unavailable - async exports disabled", applog.FieldError, err)
	}
	if amqpClient != nil {
		publisher = amqpClient
	}

	svc := cli.NewServices(res, thresholds, cfg.ReportCacheSize, cfg.ReportCacheTTL, publisher, logger)

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache))
	cacheManager.Register(svc.Cache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Reports:            svc.Reports,
		Ledger:             svc.Ledger,
		Exports:            svc.Exports,
		Store:              res.Reader,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Warn("Backend close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting familybudget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"read_only", res.ReadOnly(),
		"async_exports", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
