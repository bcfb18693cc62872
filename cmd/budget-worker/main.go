package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rabbitmq/amqp091-go"

	"budgetboard/internal/amqp"
	"budgetboard/internal/config"
	gsheet "budgetboard/internal/gateway/google"
	applog "budgetboard/internal/log"
	"budgetboard/internal/storage"
	"budgetboard/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting budget-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the worker")
		os.Exit(1)
	}

	journal, err := storage.NewJournal(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open write journal", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer journal.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(journal, sheetsClient, sheetsClient)

	// Replay anything a previous run left behind before taking new messages.
	logger.Info("Performing startup drain")
	if err := syncWorker.DrainPending(ctx, cfg.SyncBatchSize); err != nil {
		logger.Error("Startup drain failed", "error", err)
		// Keep going; the periodic drain retries.
	}

	deliveries, err := amqpClient.Consume()
	if err != nil {
		logger.Error("Failed to start consuming", "error", err)
		os.Exit(1)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					logger.Error("Delivery channel closed")
					cancel()
					return
				}
				handleDelivery(ctx, logger, syncWorker, d)
			}
		}
	}()

	// Periodic drain catches writes whose dispatch was lost.
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.DrainPending(ctx, cfg.SyncBatchSize); err != nil {
					logger.Error("Periodic drain failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped")
}

func handleDelivery(ctx context.Context, logger *applog.Logger, w *worker.SyncWorker, d amqp091.Delivery) {
	msg, err := amqp.WriteMessageFromJSON(d.Body)
	if err != nil {
		logger.Error("Discarding malformed message", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.HandleWriteMessage(ctx, msg); err != nil {
		logger.Error("Write sync failed, requeueing", "write_id", msg.WriteID, "error", err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}
