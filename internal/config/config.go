package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Analysis knobs
	AnalysisWindowMonths int
	MinConfidence        float64
	HighConfidence       float64
	AnomalyThreshold     float64

	// Bounded pool for analysis work
	AnalysisWorkers int

	// Institution feed endpoints
	KBBankURL        string
	ShinhanCardURL   string
	ShinhanInvestURL string
	FeedTimeout      time.Duration

	// Serve the deterministic mock institution APIs in-process
	MockBankEnabled bool

	// Google Sheets report export (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsync.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsync"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "analysis_requests"),

		AnalysisWindowMonths: getEnvInt("ANALYSIS_WINDOW_MONTHS", 3),
		MinConfidence:        getEnvFloat("MIN_CONFIDENCE", 0.6),
		HighConfidence:       getEnvFloat("HIGH_CONFIDENCE", 0.8),
		AnomalyThreshold:     getEnvFloat("ANOMALY_THRESHOLD", 20.0),

		AnalysisWorkers: getEnvInt("ANALYSIS_WORKERS", 4),

		KBBankURL:        getEnv("KB_BANK_URL", "http://localhost:8082/mock"),
		ShinhanCardURL:   getEnv("SHINHAN_CARD_URL", "http://localhost:8082/mock"),
		ShinhanInvestURL: getEnv("SHINHAN_INVEST_URL", "http://localhost:8082/mock"),
		FeedTimeout:      getEnvDuration("FEED_TIMEOUT", 10*time.Second),

		MockBankEnabled: getEnvBool("MOCK_BANK_ENABLED", true),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AnalysisWindowMonths < 1 || c.AnalysisWindowMonths > 24 {
		errors = append(errors, fmt.Sprintf("invalid analysis window %d months: must be between 1 and 24", c.AnalysisWindowMonths))
	}
	if c.MinConfidence <= 0 || c.MinConfidence > 1 {
		errors = append(errors, fmt.Sprintf("invalid confidence threshold %v: must be in (0,1]", c.MinConfidence))
	}
	if c.HighConfidence < c.MinConfidence || c.HighConfidence > 1 {
		errors = append(errors, fmt.Sprintf("invalid high-confidence threshold %v: must be in [%v,1]", c.HighConfidence, c.MinConfidence))
	}
	if c.AnomalyThreshold <= 0 {
		errors = append(errors, fmt.Sprintf("invalid anomaly threshold %v: must be positive", c.AnomalyThreshold))
	}

	if c.AnalysisWorkers < 1 {
		errors = append(errors, fmt.Sprintf("invalid analysis worker count %d: must be at least 1", c.AnalysisWorkers))
	} else if c.AnalysisWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid analysis worker count %d: must be at most 64", c.AnalysisWorkers))
	}

	if c.FeedTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid feed timeout %v: must be at least 1 second", c.FeedTimeout))
	}

	for name, u := range map[string]string{
		"KB_BANK_URL":        c.KBBankURL,
		"SHINHAN_CARD_URL":   c.ShinhanCardURL,
		"SHINHAN_INVEST_URL": c.ShinhanInvestURL,
	} {
		if u == "" {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be an http(s) URL", name, u))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
