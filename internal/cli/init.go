// Package cli provides common initialization utilities for the binaries and
// the budgetctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"familybudget/internal/amqp"
	"familybudget/internal/analysis"
	"familybudget/internal/backend"
	"familybudget/internal/cache"
	"familybudget/internal/config"
	applog "familybudget/internal/log"
	"familybudget/internal/report"
	"familybudget/internal/services"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the default logger.
func SetupLogger(level string) *applog.Logger {
	logger := applog.NewText(os.Stdout, applog.ParseLevel(level), applog.ComponentApp)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile(logger *applog.Logger) {
	if err := config.LoadDotEnv(".env"); err != nil {
		logger.Warn("Ignoring unreadable .env file", applog.FieldError, err)
	}
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadThresholds reads the heuristic overrides or exits on a bad file.
func LoadThresholds(logger *applog.Logger, path string) analysis.Thresholds {
	th, err := config.LoadThresholds(path)
	if err != nil {
		logger.Error("Failed to load thresholds", applog.FieldError, err, "path", path)
		os.Exit(1)
	}
	return th
}

// OpenBackend creates the configured store.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// Services bundles the application services built over one backend.
type Services struct {
	Reports *services.ReportService
	Ledger  *services.LedgerService
	Exports *services.ExportService
	Cache   *cache.LRUCache[*report.Report]
}

// NewServices wires the report cache, the ledger and the exporter. publisher
// may be nil when no job queue is configured.
func NewServices(res *backend.BackendResult, th analysis.Thresholds, cacheSize int, cacheTTL time.Duration, publisher services.ExportPublisher, logger *applog.Logger) Services {
	reportCache := cache.NewLRUCache[*report.Report](cacheSize, cacheTTL)
	reports := services.NewReportService(res.Reader, reportCache, th, logger)
	return Services{
		Reports: reports,
		Ledger:  services.NewLedgerService(res.Reader, res.Writer, reports, logger),
		Exports: services.NewExportService(reports, publisher, logger),
		Cache:   reportCache,
	}
}

// ConnectAMQP returns a client when url is set. A nil client with a nil
// error means the queue is disabled.
func ConnectAMQP(logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
