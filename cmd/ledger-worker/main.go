package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"
	"pocketledger/internal/amqp"
	"pocketledger/internal/cli"
	"pocketledger/internal/config"
	applog "pocketledger/internal/log"
	gsheet "pocketledger/internal/sheets/google"
	"pocketledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)

	if err := run(logger); err != nil {
		logger.Error("Worker exited with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(logger *applog.Logger) error {
	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	if err != nil {
		return err
	}

	ctx, stop := cli.GracefulShutdown()
	defer stop()

	// The worker consumes on its own connection; the store needs no publisher.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res, err := cli.OpenBackend(ctx, logger, &storeCfg)
	if err != nil {
		return err
	}
	defer res.Close()

	sheet, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	w := worker.NewMirrorWorker(res.Store, sheet, logger.WithComponent(applog.ComponentWorker).Logger, cli.LedgerOptions(cfg)...)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		defer consumer.Close()
	} else {
		logger.Info("AMQP not configured, mirroring on the reconcile interval only",
			"interval", cfg.MirrorInterval)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.RunReconcile(gctx, cfg.MirrorInterval)
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			err := consumer.Consume(gctx, w.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
