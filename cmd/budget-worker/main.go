package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Warn("Failed to load .env file", applog.FieldError, err)
	}
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting budget-worker")

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return cli.Fail(logger, "Configuration validation failed", err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}
	if cfg.AMQPURL == "" {
		return cli.Fail(logger, "AMQP_URL is required for the worker", errors.New("missing AMQP_URL"))
	}

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return cli.Fail(logger, "Invalid backend configuration", err)
	}
	// The worker consumes with its own client; the factory's is not needed.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return cli.Fail(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	exporter, err := backend.NewExporter(ctx, backendCfg, logger.Logger)
	if err != nil {
		return cli.Fail(logger, "Failed to initialize exporter", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return cli.Fail(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	syncWorker := worker.NewSyncWorker(result.Store, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeTransactionEvents(gctx, syncWorker.Handle)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return cli.Fail(logger, "Message consumption failed", err)
	}
	logger.Info("Worker stopped")
	return 0
}
