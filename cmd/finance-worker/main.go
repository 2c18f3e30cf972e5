package main

import (
	"context"
	"errors"
	"os"

	"finance/internal/amqp"
	"finance/internal/backend"
	"finance/internal/cli"
	applog "finance/internal/log"
	"finance/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	repo := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)
	defer repo.Close()

	exportConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid export configuration", applog.FieldError, err)
		os.Exit(1)
	}
	exporter, err := backend.NewFactory(logger.Logger).CreateExporter(ctx, exportConfig)
	if err != nil {
		logger.Error("Failed to initialize exporter", applog.FieldError, err, "backend", exportConfig.Type)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter.Exporter)

	if cfg.WorkerStartupSync {
		logger.Info("Performing startup sync", applog.FieldOperation, applog.OpStartup)
		if err := exportWorker.StartupSync(ctx); err != nil {
			// Not fatal: the consumer still handles new events.
			logger.Error("Startup sync failed", applog.FieldError, err)
		}
	}

	logger.Info("Starting finance worker", "queue", cfg.AMQPQueue, "backend", exporter.Type)
	if err := amqpClient.ConsumeTransactionEvents(ctx, exportWorker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
