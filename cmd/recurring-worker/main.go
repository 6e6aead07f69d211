package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/amqp"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/config"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/log"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/services"
	"github.com/afkcodes/kakeibo-finance-sub000/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentWorker
	logger := log.New(logCfg)
	log.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
			amqpClient = nil
		}
	}

	ledgerService := services.NewLedgerService(store, amqpClient)
	defer ledgerService.Close()

	processor := services.NewRecurringProcessor(store, ledgerService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run once on startup so a worker that was down still catches up.
	logger.Info("Running initial recurring transaction processing...")
	if count, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "transactions_created", count)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.RecurringSchedule, func() {
		count, err := processor.ProcessDue(ctx, time.Now())
		if err != nil {
			logger.Error("Scheduled processing failed", "error", err)
			return
		}
		logger.Info("Scheduled processing complete", "transactions_created", count)
	})
	if err != nil {
		logger.Error("Failed to schedule recurring processing", "error", err, "schedule", cfg.RecurringSchedule)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Recurring processor scheduled",
		"schedule", cfg.RecurringSchedule,
		"sqlite_db", cfg.SQLiteDBPath)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.ShutdownTimeout):
		logger.Warn("Shutdown timeout reached")
	}
	logger.Info("Recurring-worker shutdown complete")
}
