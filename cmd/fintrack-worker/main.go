package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	sheetsgoogle "fintrack/internal/sheets/google"
	sheetsmem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"
)

const exportBatchSize = 100

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("starting fintrack-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := backend.Open(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Error("failed to open data backend",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Error("failed to close data backend", log.FieldError, err.Error())
		}
	}()

	// Export target: a Google Sheet when configured, otherwise an
	// in-process log so the worker still drains the queue.
	var appender sheets.RowAppender
	if cfg.GoogleSpreadsheetID != "" {
		gc, err := sheetsgoogle.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("failed to initialize sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		appender = gc
		logger.Info("sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		appender = sheetsmem.New()
		logger.Warn("no GOOGLE_SPREADSHEET_ID provided, export rows stay in memory")
	}

	w := worker.NewExportWorker(repo, appender, exportBatchSize)

	// Export anything already in the store before consuming new events.
	if n, err := w.CatchUp(ctx); err != nil {
		logger.Error("startup catch-up failed", log.FieldError, err.Error())
	} else {
		logger.Info("startup catch-up completed", "exported", n)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		consumer, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to connect to broker", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer func() { _ = consumer.Close() }()

		g.Go(func() error {
			return consumer.Consume(gctx, w.HandleEvent)
		})
		logger.Info("consuming transaction events", "queue", cfg.AMQPQueue)
	} else {
		logger.Warn("no AMQP_URL provided, relying on periodic catch-up only")
	}

	g.Go(func() error {
		return w.RunCatchUp(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
