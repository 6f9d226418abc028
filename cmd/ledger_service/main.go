package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bizdesk-posting-ledger/internal/api_gateway"
	"github.com/bizdesk-posting-ledger/internal/api_gateway/service"
	"github.com/bizdesk-posting-ledger/internal/config"
	"github.com/bizdesk-posting-ledger/internal/data/mongo"
	"github.com/bizdesk-posting-ledger/internal/data/postgres"
	"github.com/bizdesk-posting-ledger/internal/logger"
	"github.com/bizdesk-posting-ledger/internal/outbox_poller"
	"github.com/bizdesk-posting-ledger/internal/platform/messaging/producers"
	"github.com/bizdesk-posting-ledger/internal/platform/persistence"
	"github.com/bizdesk-posting-ledger/internal/posting"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Posting Ledger Service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Probe schema capabilities once; repositories shape their SQL around them
	caps := persistence.DetectCapabilities(appCtx, postgresDB.Pool(), log)

	// Initialize Kafka producer for posted line groups
	postingProducer, err := producers.NewPostingEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize posting event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB, caps)
	settingsRepo := postgres.NewSettingsRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize the posting engine
	directory := posting.NewDirectory(log, accountRepo, settingsRepo)
	poster := posting.NewPoster(log, postgresDB, ledgerRepo, outboxRepo)
	lifecycle := posting.NewLifecycle(log, postgresDB, ledgerRepo)
	workflows := posting.NewWorkflows(log, directory, poster, settingsRepo)

	// Initialize services
	accountService := service.NewAccountService(accountRepo)
	postingService := service.NewPostingService(log, workflows, lifecycle, ledgerRepo, auditRepo)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, accountService, postingService)
	log.Info("REST server initialized")

	// Initialize outbox poller
	poller, err := outbox_poller.NewPoller(&cfg.Outbox, &cfg.Publisher, outboxRepo, postingProducer, log)
	if err != nil {
		log.Error("Failed to initialize outbox poller", "error", err)
		os.Exit(1)
	}

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for the poller to drain its in-flight batch
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = postingProducer.Close(); err != nil {
		log.Error("Error closing posting event producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("Service shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Service shutdown completed with errors")
	} else {
		log.Info("Service shutdown completed successfully")
	}
}
