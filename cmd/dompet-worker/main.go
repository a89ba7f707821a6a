package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	"dompet/internal/log"
	gsheet "dompet/internal/sheets/google"
	"dompet/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting dompet-worker")

	ctx, stop := cli.SignalContext()
	defer stop()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	if !cfg.ExportEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, nothing to export")
		return
	}

	exporter, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		PeriodsSheet:  cfg.GooglePeriodsSheetName,
		ArchiveSheet:  cfg.GoogleArchiveSheetName,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	exportWorker := worker.NewExportWorker(res.Backend, exporter, cfg.ExportBatchSize)

	if cfg.ExportStartupCheck {
		logger.Info("Performing startup export check...")
		if _, err := exportWorker.StartupCheck(ctx); err != nil {
			logger.Error("Failed startup export check", log.FieldError, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exportWorker.Run(gctx, cfg.ExportInterval)
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			return client.ConsumePeriodArchived(gctx, exportWorker.HandlePeriodArchived)
		})
		logger.Info("Consuming period archived messages", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
