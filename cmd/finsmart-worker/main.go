package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"finsmart/internal/amqp"
	"finsmart/internal/cli"
	"finsmart/internal/config"
	"finsmart/internal/log"
	"finsmart/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting finsmart-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	factory, bc, source := cli.OpenBackend(ctx, logger, cfg)
	defer source.Close()

	target, err := factory.CreateMirror(ctx, bc)
	if err != nil {
		logger.Error("Failed to open mirror spreadsheet", log.FieldError, err)
		os.Exit(1)
	}
	defer target.Close()
	logger.Info("Mirroring to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(source.Medium, target.Medium, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPEnabled() {
		consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer consumer.Close()
		g.Go(func() error {
			return consumer.ConsumeTableSaved(gctx, mirror.HandleTableSaved)
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep", "interval", cfg.MirrorInterval)
	}

	g.Go(func() error {
		return mirror.Run(gctx, cfg.MirrorInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
