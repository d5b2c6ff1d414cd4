package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/branch"
	"salesdash/internal/cli"
	"salesdash/internal/dashboard"
	"salesdash/internal/log"
	"salesdash/internal/worker"
)

func main() {
	consume := flag.Bool("consume", false, "consume snapshots and write them as workbooks instead of publishing")
	outDir := flag.String("out", "exports", "directory for workbooks written in -consume mode")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the publisher")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	if *consume {
		sink, err := worker.NewWorkbookSink(*outDir, logger)
		if err != nil {
			logger.Error("Failed to prepare export directory", log.FieldError, err, "dir", *outDir)
			os.Exit(1)
		}
		logger.Info("Consuming snapshots", log.FieldOperation, log.OpConsume, "queue", cfg.AMQPQueue, "dir", *outDir)
		if err := client.ConsumeSnapshots(ctx, sink.HandleSnapshot); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Snapshot consumption failed", log.FieldError, err)
			os.Exit(1)
		}
		cli.WaitForShutdown(ctx, done)
		return
	}

	startCtx, cancelStart := context.WithTimeout(ctx, 30*time.Second)
	res, err := cli.OpenBackend(startCtx, logger, cfg)
	if err != nil {
		cancelStart()
		logger.Error("Failed to open data backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	registry, err := branch.Load(startCtx, res.Backend)
	cancelStart()
	if err != nil {
		logger.Error("Failed to load branches", log.FieldOperation, log.OpLoad, log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	service := dashboard.NewService(registry, dashboard.WithLogger(logger))
	pw := worker.NewPublishWorker(service, client, logger)

	logger.Info("Starting snapshot publisher", log.FieldOperation, log.OpPublish, "exchange", cfg.AMQPExchange, "interval", cfg.PublishInterval.String())
	if err := pw.Run(ctx, cfg.PublishInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Snapshot publishing failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Publisher stopped")
}
