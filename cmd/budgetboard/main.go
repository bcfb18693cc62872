package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetboard/internal/amqp"
	"budgetboard/internal/catalog"
	"budgetboard/internal/config"
	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
	gsheet "budgetboard/internal/gateway/google"
	mem "budgetboard/internal/gateway/memory"
	apphttp "budgetboard/internal/http"
	applog "budgetboard/internal/log"
	"budgetboard/internal/services"
	"budgetboard/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	fallback := catalog.Default()
	if cfg.CatalogPath != "" {
		fallback = catalog.FromFile(cfg.CatalogPath)
	}

	var gw gateway.Gateway
	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err, "backend", cfg.DataBackend)
			os.Exit(1)
		}
		gw = cli
		logger.Info("Initialized Google Sheets backend", "backend", cfg.DataBackend)
	default:
		gw = mem.New(fallback, []mem.User{
			{Username: "admin", Password: "admin", Role: core.RoleAdmin, Name: "Administrator"},
			{Username: "user", Password: "user", Role: core.RoleUser, Name: "User"},
		})
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	opts := []services.Option{}
	if cfg.AMQPURL != "" {
		journal, err := storage.NewJournal(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open write journal", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer journal.Close()

		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		opts = append(opts, services.WithJournal(journal, amqpClient))
		logger.Info("Write journal enabled", "path", cfg.SQLiteDBPath, "exchange", cfg.AMQPExchange)
	}

	session := services.NewSession(gw, fallback, opts...)
	srv := apphttp.NewServer(":"+cfg.Port, session, cfg.FiscalEndYear)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting budgetboard server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
