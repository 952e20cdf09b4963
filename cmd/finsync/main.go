package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsync/internal/amqp"
	"finsync/internal/config"
	"finsync/internal/feed"
	apphttp "finsync/internal/http"
	"finsync/internal/insights"
	applog "finsync/internal/log"
	"finsync/internal/mockbank"
	"finsync/internal/services"
	"finsync/internal/storage"
)

func main() {
	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "db_path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	engine := insights.New(insights.Config{
		WindowMonths:     cfg.AnalysisWindowMonths,
		MinConfidence:    cfg.MinConfidence,
		HighConfidence:   cfg.HighConfidence,
		AnomalyThreshold: cfg.AnomalyThreshold,
	}, logger.Logger)

	analysisSvc := services.NewAnalysisService(repo, engine, cfg.AnalysisWorkers, logger.Logger)

	// Institution feed clients share one HTTP client.
	hc := &http.Client{Timeout: cfg.FeedTimeout}
	clients := []*feed.Client{
		feed.NewClient(feed.Institution{Name: "kb_bank", BaseURL: cfg.KBBankURL, Path: "/kb_bank/transactions", Industry: "bank"}, hc),
		feed.NewClient(feed.Institution{Name: "shinhan_card", BaseURL: cfg.ShinhanCardURL, Path: "/shinhan_card/transactions", Industry: "card"}, hc),
		feed.NewClient(feed.Institution{Name: "shinhan_invest", BaseURL: cfg.ShinhanInvestURL, Path: "/shinhan_invest/transactions", Industry: "invest"}, hc),
	}
	aggregator := feed.NewAggregator(clients, logger.Logger)

	var publisher services.AnalysisRequestPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP not configured, sync stays synchronous")
	}
	syncSvc := services.NewSyncService(aggregator, repo, publisher, logger.Logger)

	srv := apphttp.NewServer(":"+cfg.Port, analysisSvc, syncSvc, logger.Logger)
	if cfg.MockBankEnabled {
		srv.Mount("/mock/", mockbank.Handler(logger.Logger))
		logger.Info("Mock institution endpoints enabled", "prefix", "/mock")
	}

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

	logger.Info("Starting finsync server", "port", cfg.Port, "workers", cfg.AnalysisWorkers)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
