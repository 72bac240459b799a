package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	"bilancio/internal/insight"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: "worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker always needs the durable store: rewarmed reports are
	// persisted there for the API to serve.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportService := services.NewReportService(repo, repo, repo)

	periods := make([]insight.Period, 0, len(cfg.RefreshPeriods))
	for _, p := range cfg.RefreshPeriods {
		periods = append(periods, insight.ParsePeriod(p))
	}

	processor := services.NewRefreshProcessor(amqpClient, reportService, repo, services.RefreshProcessorConfig{
		Periods:           periods,
		ReconnectAttempts: cfg.RefreshReconnectAttempts,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start refresh processor", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.RefreshStopTimeout)
	defer stopCancel()

	if err := processor.Stop(stopCtx); err != nil {
		logger.Warn("Refresh processor did not stop cleanly", "error", err)
	} else {
		logger.Info("Worker shutdown complete")
	}
}
