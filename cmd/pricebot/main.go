package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"research-tracker-go/internal/config"
	"research-tracker-go/internal/database"
	"research-tracker-go/internal/logger"
	"research-tracker-go/internal/marketdata"
	"research-tracker-go/internal/snapshot"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	client := marketdata.NewClient(&cfg.MarketData, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the snapshot engine
	engine := snapshot.NewEngine(log, &cfg, client, db)
	engine.Run(ctx)

	log.Info("Pricebot has been shut down.")
}
