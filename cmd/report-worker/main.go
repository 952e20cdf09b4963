package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsync/internal/amqp"
	"finsync/internal/config"
	"finsync/internal/export/sheets"
	"finsync/internal/insights"
	applog "finsync/internal/log"
	"finsync/internal/services"
	"finsync/internal/storage"
)

// The report worker consumes analysis requests queued by a mydata sync,
// recomputes the user's recurring analysis from stored transactions, and
// exports the report to a spreadsheet.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var exporter sheets.ReportExporter
	if cfg.GoogleSpreadsheetID != "" {
		exporter, err = sheets.NewGoogleClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		logger.Info("Sheets exporter enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("No spreadsheet configured, reports are logged only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	handler := func(ctx context.Context, msg *amqp.AnalysisRequestMessage) error {
		hctx, hcancel := context.WithTimeout(ctx, 2*time.Minute)
		defer hcancel()

		analysis, err := analysisSvc.RecurringAnalysis(hctx, msg.Username)
		if err != nil {
			return err
		}
		prediction, err := analysisSvc.Prediction(hctx, msg.Username)
		if err != nil {
			return err
		}

		if exporter == nil {
			logger.InfoContext(hctx, "Analysis report ready",
				"request_id", msg.RequestID,
				"username", msg.Username,
				"recurring_merchants", analysis.TotalRecurringMerchants,
				"next_month_predicted", prediction.TotalPredictedAmount)
			return nil
		}

		ref, err := exporter.ExportReport(hctx, msg.Username, analysis, prediction)
		if err != nil {
			return err
		}
		logger.InfoContext(hctx, "Report exported",
			"request_id", msg.RequestID, "username", msg.Username, "range", ref)
		return nil
	}

	logger.Info("Report worker started", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeAnalysisRequests(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("Report worker stopped gracefully")
}
