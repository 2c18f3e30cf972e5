package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"finance/internal/amqp"
	"finance/internal/cli"
	apphttp "finance/internal/http"
	applog "finance/internal/log"
	"finance/internal/services"
	mem "finance/internal/sheets/memory"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// Schema is in place before the listener opens.
	repo := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)

	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are best effort; the API keeps working without a broker.
			logger.Warn("AMQP unavailable, transaction events disabled", applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(repo, publisher)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close transaction service", applog.FieldError, err)
		}
	}()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		Logger:             logger.WithComponent(applog.ComponentHTTP),
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, svc, mem.NewFromFiles(cfg.CategoriesDir))
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting finance server", "addr", cfg.Addr(), "db", cfg.SQLiteDBPath, "events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "addr", cfg.Addr())
			cancel()
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
