// Package services orchestrates the analysis engine over the transaction
// feed. It owns the bounded worker pool that keeps heavy statistical
// passes from starving unrelated requests.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"finsync/internal/core"
	"finsync/internal/feed"
	"finsync/internal/insights"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidDate  = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidSpan  = errors.New("months must be between 1 and 24")
)

// AnalysisService runs the recurring-payment analyses for a user. Every
// call fetches a fresh transaction snapshot and recomputes the pattern
// analysis; nothing is cached between calls.
type AnalysisService struct {
	feed   feed.TransactionFeed
	engine *insights.Engine
	sem    *semaphore.Weighted
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalysisService creates the service with a pool of maxWorkers
// concurrent analyses. maxWorkers below 1 disables the bound.
func NewAnalysisService(f feed.TransactionFeed, engine *insights.Engine, maxWorkers int, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	var sem *semaphore.Weighted
	if maxWorkers >= 1 {
		sem = semaphore.NewWeighted(int64(maxWorkers))
	}
	return &AnalysisService{
		feed:   f,
		engine: engine,
		sem:    sem,
		logger: logger.With("component", "analysis"),
		now:    time.Now,
	}
}

// acquire takes a pool slot, honoring context cancellation. The returned
// release func is a no-op when the pool is unbounded.
func (s *AnalysisService) acquire(ctx context.Context) (func(), error) {
	if s.sem == nil {
		return func() {}, nil
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire analysis slot: %w", err)
	}
	return func() { s.sem.Release(1) }, nil
}

// analyze fetches the trailing window and mines it. This is the shared
// first stage of every downstream operation.
func (s *AnalysisService) analyze(ctx context.Context, username string, now time.Time) (insights.PatternAnalysis, error) {
	if username == "" {
		return insights.PatternAnalysis{}, core.ErrEmptyUsername
	}

	start := now.AddDate(0, -s.engine.Config().WindowMonths, 0)
	txs, err := s.feed.ListTransactions(ctx, username, start, now)
	if err != nil {
		return insights.PatternAnalysis{}, fmt.Errorf("fetch transactions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return insights.PatternAnalysis{}, err
	}

	analysis := s.engine.AnalyzePatterns(ctx, txs, start, now)
	s.logger.InfoContext(ctx, "Pattern analysis complete",
		"username", username,
		"transactions", len(txs),
		"recurring_merchants", analysis.TotalRecurringMerchants,
		"high_confidence", analysis.HighConfidenceCount)
	return analysis, nil
}

// RecurringAnalysis mines the user's recurring payment patterns.
func (s *AnalysisService) RecurringAnalysis(ctx context.Context, username string) (insights.PatternAnalysis, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.PatternAnalysis{}, err
	}
	defer release()
	return s.analyze(ctx, username, s.now())
}

// Prediction forecasts the user's next-month recurring payments.
func (s *AnalysisService) Prediction(ctx context.Context, username string) (insights.Prediction, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.Prediction{}, err
	}
	defer release()

	now := s.now()
	analysis, err := s.analyze(ctx, username, now)
	if err != nil {
		return insights.Prediction{}, err
	}
	return s.engine.PredictNextMonth(analysis, now), nil
}

// Categories rolls the user's recurring patterns up by category.
func (s *AnalysisService) Categories(ctx context.Context, username string) (insights.CategoryAnalysis, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.CategoryAnalysis{}, err
	}
	defer release()

	analysis, err := s.analyze(ctx, username, s.now())
	if err != nil {
		return insights.CategoryAnalysis{}, err
	}
	return s.engine.AggregateByCategory(analysis), nil
}

// Anomalies compares the current month's transactions against the mined
// patterns. A non-positive threshold uses the configured default.
func (s *AnalysisService) Anomalies(ctx context.Context, username string, threshold float64) (insights.AnomalyReport, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.AnomalyReport{}, err
	}
	defer release()

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	current, err := s.feed.ListTransactions(ctx, username, monthStart, now)
	if err != nil {
		return insights.AnomalyReport{}, fmt.Errorf("fetch current month transactions: %w", err)
	}

	analysis, err := s.analyze(ctx, username, now)
	if err != nil {
		return insights.AnomalyReport{}, err
	}
	return s.engine.DetectAnomalies(analysis, current, threshold, now), nil
}

// Summary condenses the analysis and the forecast for the dashboard.
func (s *AnalysisService) Summary(ctx context.Context, username string) (insights.Summary, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.Summary{}, err
	}
	defer release()

	now := s.now()
	analysis, err := s.analyze(ctx, username, now)
	if err != nil {
		return insights.Summary{}, err
	}
	prediction := s.engine.PredictNextMonth(analysis, now)
	return s.engine.Summarize(analysis, prediction), nil
}

// Calendar places the user's predicted payments onto the given month.
func (s *AnalysisService) Calendar(ctx context.Context, username string, year, month int) (insights.Calendar, error) {
	if month < 1 || month > 12 {
		return insights.Calendar{}, ErrInvalidMonth
	}
	release, err := s.acquire(ctx)
	if err != nil {
		return insights.Calendar{}, err
	}
	defer release()

	now := s.now()
	analysis, err := s.analyze(ctx, username, now)
	if err != nil {
		return insights.Calendar{}, err
	}
	prediction := s.engine.PredictNextMonth(analysis, now)
	return s.engine.PaymentCalendar(prediction, year, month), nil
}

// monthRange returns the closed first-to-last-day range of a month.
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// MonthlyTransactions returns one month's transactions grouped by date.
func (s *AnalysisService) MonthlyTransactions(ctx context.Context, username string, year, month int) (map[string][]core.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	start, end := monthRange(year, month)
	txs, err := s.feed.ListTransactions(ctx, username, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return insights.GroupByDate(txs), nil
}

// DailyTransactions returns the transactions of one calendar date.
func (s *AnalysisService) DailyTransactions(ctx context.Context, username, date string) ([]core.Transaction, error) {
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	day, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	txs, err := s.feed.ListTransactions(ctx, username, day, day)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return txs, nil
}

// MultiMonthSummary returns one summary per month from startYear/startMonth
// through endYear/endMonth inclusive.
func (s *AnalysisService) MultiMonthSummary(ctx context.Context, username string, startYear, startMonth, endYear, endMonth int) ([]insights.MonthlySummary, error) {
	if startMonth < 1 || startMonth > 12 || endMonth < 1 || endMonth > 12 {
		return nil, ErrInvalidMonth
	}
	if username == "" {
		return nil, core.ErrEmptyUsername
	}
	start, _ := monthRange(startYear, startMonth)
	_, end := monthRange(endYear, endMonth)
	if end.Before(start) {
		return nil, core.ErrInvalidRange
	}
	txs, err := s.feed.ListTransactions(ctx, username, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	return insights.SummarizeMonths(txs, startYear, startMonth, endYear, endMonth), nil
}

// TransactionPattern analyzes the user's spending habits over the trailing
// months. months below 1 defaults to 6.
func (s *AnalysisService) TransactionPattern(ctx context.Context, username string, months int) (insights.TransactionPattern, error) {
	if username == "" {
		return insights.TransactionPattern{}, core.ErrEmptyUsername
	}
	if months < 1 {
		months = 6
	}
	if months > 24 {
		return insights.TransactionPattern{}, ErrInvalidSpan
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := monthStart.AddDate(0, -months, 0)
	end := monthStart.AddDate(0, 1, -1)
	txs, err := s.feed.ListTransactions(ctx, username, start, end)
	if err != nil {
		return insights.TransactionPattern{}, fmt.Errorf("fetch transactions: %w", err)
	}
	return insights.AnalyzeTransactionPattern(txs, months, now), nil
}

// MonthlySummary returns the income/expense overview of one month.
func (s *AnalysisService) MonthlySummary(ctx context.Context, username string, year, month int) (insights.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return insights.MonthlySummary{}, ErrInvalidMonth
	}
	if username == "" {
		return insights.MonthlySummary{}, core.ErrEmptyUsername
	}
	start, end := monthRange(year, month)
	txs, err := s.feed.ListTransactions(ctx, username, start, end)
	if err != nil {
		return insights.MonthlySummary{}, fmt.Errorf("fetch transactions: %w", err)
	}
	return insights.SummarizeMonth(txs, year, month), nil
}

// MonthlyStatistics returns the detailed statistics of one month.
func (s *AnalysisService) MonthlyStatistics(ctx context.Context, username string, year, month int) (insights.MonthlyStatistics, error) {
	if month < 1 || month > 12 {
		return insights.MonthlyStatistics{}, ErrInvalidMonth
	}
	if username == "" {
		return insights.MonthlyStatistics{}, core.ErrEmptyUsername
	}
	start, end := monthRange(year, month)
	txs, err := s.feed.ListTransactions(ctx, username, start, end)
	if err != nil {
		return insights.MonthlyStatistics{}, fmt.Errorf("fetch transactions: %w", err)
	}
	return insights.StatisticsForMonth(txs, year, month), nil
}
