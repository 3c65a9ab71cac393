package main

import (
	"context"
	"errors"
	"os"
	"time"

	"familybudget/internal/cli"
	applog "familybudget/internal/log"
	"familybudget/internal/worker"
)

func main() {
	bootLogger := cli.SetupLogger("info")
	cli.LoadEnvFile(bootLogger)

	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)
	logger.Info("Starting report-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}
	thresholds := cli.LoadThresholds(logger, cfg.ThresholdsFile)

	res, err := cli.OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	svc := cli.NewServices(res, thresholds, 32, time.Minute, nil, logger)
	exportWorker := worker.NewExportWorker(svc.Exports, cfg.ExportDir, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := exportWorker.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Report worker stopped")
}
