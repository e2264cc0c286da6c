package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"mfdist/internal/amqp"
	"mfdist/internal/cli"
	"mfdist/internal/config"
	"mfdist/internal/leads"
	"mfdist/internal/leads/google"
	"mfdist/internal/leads/memory"
	applog "mfdist/internal/log"
	"mfdist/internal/services"
	"mfdist/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting mfdist-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.LeadBackend != config.BackendSQLite {
		logger.Error("The export worker needs the sqlite lead backend", applog.FieldBackend, cfg.LeadBackend)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exporter := newExporter(ctx, logger, cfg)

	processor := services.NewExportProcessor(repo, exporter, services.ExportProcessorConfig{
		PollInterval: cfg.ExportInterval,
		BatchSize:    cfg.ExportBatchSize,
		MaxAttempts:  cfg.ExportMaxAttempts,
	})
	leadWorker := worker.NewLeadWorker(processor, repo)

	logger.Info("Performing startup export check...")
	if err := leadWorker.StartupExportCheck(ctx); err != nil {
		logger.Error("Startup export check failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeLeadSubmitted(gctx, leadWorker.HandleLeadMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic export only")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// newExporter returns the Google Sheets exporter when configured and a
// dry-run in-memory exporter otherwise.
func newExporter(ctx context.Context, logger *applog.Logger, cfg *config.Config) leads.Exporter {
	if !cfg.ExportConfigured() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exports are dry-run")
		return memory.New()
	}

	exporter, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleLeadsSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	}
	if err := exporter.EnsureHeader(ctx); err != nil {
		logger.Warn("Could not write sheet header", applog.FieldError, err)
	}
	return exporter
}
