package insights

import (
	"log/slog"
)

// Config holds the caller-adjustable analysis knobs.
type Config struct {
	// WindowMonths is the length of the trailing analysis window.
	WindowMonths int
	// MinConfidence is the qualification bar for recurring patterns.
	MinConfidence float64
	// HighConfidence marks patterns counted as high confidence.
	HighConfidence float64
	// AnomalyThreshold is the default percentage deviation bar.
	AnomalyThreshold float64
}

// DefaultConfig returns the standard analysis parameters.
func DefaultConfig() Config {
	return Config{
		WindowMonths:     3,
		MinConfidence:    0.6,
		HighConfidence:   0.8,
		AnomalyThreshold: 20.0,
	}
}

// Engine runs the recurring-payment analyses. It is stateless and safe
// for concurrent use; each call works on its own snapshot.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Engine {
	if cfg.WindowMonths <= 0 {
		cfg.WindowMonths = 3
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.6
	}
	if cfg.HighConfidence <= 0 {
		cfg.HighConfidence = 0.8
	}
	if cfg.AnomalyThreshold <= 0 {
		cfg.AnomalyThreshold = 20.0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger.With("component", "insights")}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}
