package insights

import (
	"sort"
	"time"

	"finsync/internal/core"
)

// GroupByDate buckets transactions by their calendar date.
func GroupByDate(txs []core.Transaction) map[string][]core.Transaction {
	byDate := make(map[string][]core.Transaction)
	for _, t := range txs {
		byDate[t.Date()] = append(byDate[t.Date()], t)
	}
	return byDate
}

// SourceStats summarizes one institution's movements inside a month.
type SourceStats struct {
	Count       int   `json:"count"`
	TotalAmount int64 `json:"total_amount"`
	Income      int64 `json:"income"`
	Expense     int64 `json:"expense"`
}

// MonthlySummary is the income/expense overview of one calendar month.
type MonthlySummary struct {
	Year                 int                    `json:"year"`
	Month                int                    `json:"month"`
	TotalIncome          int64                  `json:"total_income"`
	TotalExpense         int64                  `json:"total_expense"`
	NetAmount            int64                  `json:"net_amount"`
	TransactionCount     int                    `json:"transaction_count"`
	CategoryExpenses     map[string]int64       `json:"category_expenses"`
	SourceAnalysis       map[string]SourceStats `json:"source_analysis"`
	DailyCount           int                    `json:"daily_count"`
	AvgDailyTransactions float64                `json:"avg_daily_transactions"`
}

// SummarizeMonth computes the monthly income/expense summary with
// per-category and per-source breakdowns.
func SummarizeMonth(txs []core.Transaction, year, month int) MonthlySummary {
	summary := MonthlySummary{
		Year:             year,
		Month:            month,
		TransactionCount: len(txs),
		CategoryExpenses: make(map[string]int64),
		SourceAnalysis:   make(map[string]SourceStats),
	}

	for _, t := range txs {
		if t.IsExpense() {
			summary.TotalExpense += t.AbsAmount()
			if t.CategoryCode != "" {
				summary.CategoryExpenses[t.CategoryCode] += t.AbsAmount()
			}
		} else {
			summary.TotalIncome += t.Amount
		}

		source := t.Source
		if source == "" {
			source = "unknown"
		}
		stats := summary.SourceAnalysis[source]
		stats.Count++
		stats.TotalAmount += t.Amount
		if t.IsExpense() {
			stats.Expense += t.AbsAmount()
		} else {
			stats.Income += t.Amount
		}
		summary.SourceAnalysis[source] = stats
	}

	summary.NetAmount = summary.TotalIncome - summary.TotalExpense
	summary.DailyCount = len(GroupByDate(txs))
	if summary.DailyCount > 0 {
		summary.AvgDailyTransactions = float64(len(txs)) / float64(summary.DailyCount)
	}
	return summary
}

// SummarizeMonths computes one summary per calendar month from startYear/
// startMonth through endYear/endMonth inclusive. Months without
// transactions still produce a zero summary so chart consumers get a
// continuous series.
func SummarizeMonths(txs []core.Transaction, startYear, startMonth, endYear, endMonth int) []MonthlySummary {
	byMonth := make(map[string][]core.Transaction)
	for _, t := range txs {
		byMonth[t.Month()] = append(byMonth[t.Month()], t)
	}

	var summaries []MonthlySummary
	cur := time.Date(startYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(endYear, time.Month(endMonth), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		key := cur.Format(core.MonthLayout)
		summaries = append(summaries, SummarizeMonth(byMonth[key], cur.Year(), int(cur.Month())))
		cur = cur.AddDate(0, 1, 0)
	}
	return summaries
}

// MonthPattern summarizes one month inside a transaction-pattern analysis.
type MonthPattern struct {
	TotalTransactions int     `json:"total_transactions"`
	TotalIncome       int64   `json:"total_income"`
	TotalExpense      int64   `json:"total_expense"`
	AvgAmount         float64 `json:"avg_transaction_amount"`
}

// WeekdayStats counts the movements falling on one weekday.
type WeekdayStats struct {
	TransactionCount int     `json:"transaction_count"`
	AvgAmount        float64 `json:"avg_amount"`
}

// FrequentMerchant is one of the most visited merchants in a period.
type FrequentMerchant struct {
	MerchantName string `json:"merchant_name"`
	Frequency    int    `json:"frequency"`
	TotalAmount  int64  `json:"total_amount"`
}

// TransactionPattern describes a user's spending habits over a trailing
// period: per-month totals, weekday distribution, and the most visited
// merchants.
type TransactionPattern struct {
	AnalysisPeriodMonths int                     `json:"analysis_period_months"`
	TotalTransactions    int                     `json:"total_transactions"`
	MonthlyPattern       map[string]MonthPattern `json:"monthly_pattern"`
	WeekdayPattern       map[string]WeekdayStats `json:"day_of_week_pattern"`
	FrequentMerchants    []FrequentMerchant      `json:"frequent_merchants"`
	AnalyzedAt           time.Time               `json:"analyzed_at"`
}

const frequentMerchantLimit = 10

// AnalyzeTransactionPattern computes the habitual view over a trailing
// period of months. Transactions with an unparseable date are skipped
// from the weekday distribution only; they still count everywhere else.
func AnalyzeTransactionPattern(txs []core.Transaction, months int, now time.Time) TransactionPattern {
	pattern := TransactionPattern{
		AnalysisPeriodMonths: months,
		TotalTransactions:    len(txs),
		MonthlyPattern:       make(map[string]MonthPattern),
		WeekdayPattern:       make(map[string]WeekdayStats),
		AnalyzedAt:           now,
	}

	monthAbsTotals := make(map[string]int64)
	weekdayAbsTotals := make(map[string]int64)
	merchantTotals := make(map[string]*FrequentMerchant)
	for _, t := range txs {
		month := t.Month()
		mp := pattern.MonthlyPattern[month]
		mp.TotalTransactions++
		if t.IsExpense() {
			mp.TotalExpense += t.AbsAmount()
		} else {
			mp.TotalIncome += t.Amount
		}
		monthAbsTotals[month] += t.AbsAmount()
		pattern.MonthlyPattern[month] = mp

		if d, err := t.ParseDate(); err == nil {
			weekday := d.Weekday().String()
			ws := pattern.WeekdayPattern[weekday]
			ws.TransactionCount++
			weekdayAbsTotals[weekday] += t.AbsAmount()
			pattern.WeekdayPattern[weekday] = ws
		}

		if t.MerchantName != "" {
			fm, ok := merchantTotals[t.MerchantName]
			if !ok {
				fm = &FrequentMerchant{MerchantName: t.MerchantName}
				merchantTotals[t.MerchantName] = fm
			}
			fm.Frequency++
			fm.TotalAmount += t.AbsAmount()
		}
	}

	for month, mp := range pattern.MonthlyPattern {
		if mp.TotalTransactions > 0 {
			mp.AvgAmount = float64(monthAbsTotals[month]) / float64(mp.TotalTransactions)
		}
		pattern.MonthlyPattern[month] = mp
	}
	for weekday, ws := range pattern.WeekdayPattern {
		if ws.TransactionCount > 0 {
			ws.AvgAmount = float64(weekdayAbsTotals[weekday]) / float64(ws.TransactionCount)
		}
		pattern.WeekdayPattern[weekday] = ws
	}

	merchants := make([]FrequentMerchant, 0, len(merchantTotals))
	for _, fm := range merchantTotals {
		merchants = append(merchants, *fm)
	}
	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].Frequency != merchants[j].Frequency {
			return merchants[i].Frequency > merchants[j].Frequency
		}
		return merchants[i].MerchantName < merchants[j].MerchantName
	})
	if len(merchants) > frequentMerchantLimit {
		merchants = merchants[:frequentMerchantLimit]
	}
	pattern.FrequentMerchants = merchants

	return pattern
}

// TypeStats summarizes the movements of one transaction type.
type TypeStats struct {
	Count       int     `json:"count"`
	TotalAmount int64   `json:"total_amount"`
	AvgAmount   float64 `json:"avg_amount"`
}

// MerchantStats is the per-merchant spending total of a month.
type MerchantStats struct {
	MerchantName string `json:"merchant_name"`
	Count        int    `json:"count"`
	TotalAmount  int64  `json:"total_amount"`
}

// DailyPattern counts the movements of one day.
type DailyPattern struct {
	TransactionCount int   `json:"transaction_count"`
	TotalAmount      int64 `json:"total_amount"`
	IncomeCount      int   `json:"income_count"`
	ExpenseCount     int   `json:"expense_count"`
}

// MonthlyStatistics is the detailed statistical view of one month.
type MonthlyStatistics struct {
	Year           int                     `json:"year"`
	Month          int                     `json:"month"`
	DailyAmounts   map[string]int64        `json:"daily_amounts"`
	TypeStatistics map[string]TypeStats    `json:"type_statistics"`
	TopMerchants   []MerchantStats         `json:"top_merchants"`
	DailyPattern   map[string]DailyPattern `json:"daily_pattern"`
}

const topMerchantLimit = 10

// StatisticsForMonth computes per-day, per-type and per-merchant
// statistics for one month's transactions.
func StatisticsForMonth(txs []core.Transaction, year, month int) MonthlyStatistics {
	stats := MonthlyStatistics{
		Year:           year,
		Month:          month,
		DailyAmounts:   make(map[string]int64),
		TypeStatistics: make(map[string]TypeStats),
		DailyPattern:   make(map[string]DailyPattern),
	}

	merchantTotals := make(map[string]*MerchantStats)
	for _, t := range txs {
		date := t.Date()
		stats.DailyAmounts[date] += t.Amount

		ts := stats.TypeStatistics[t.TranType]
		ts.Count++
		ts.TotalAmount += t.Amount
		stats.TypeStatistics[t.TranType] = ts

		dp := stats.DailyPattern[date]
		dp.TransactionCount++
		dp.TotalAmount += t.Amount
		if t.IsExpense() {
			dp.ExpenseCount++
		} else {
			dp.IncomeCount++
		}
		stats.DailyPattern[date] = dp

		if t.MerchantName != "" {
			ms, ok := merchantTotals[t.MerchantName]
			if !ok {
				ms = &MerchantStats{MerchantName: t.MerchantName}
				merchantTotals[t.MerchantName] = ms
			}
			ms.Count++
			ms.TotalAmount += t.AbsAmount()
		}
	}

	for tranType, ts := range stats.TypeStatistics {
		if ts.Count > 0 {
			ts.AvgAmount = float64(ts.TotalAmount) / float64(ts.Count)
		}
		stats.TypeStatistics[tranType] = ts
	}

	merchants := make([]MerchantStats, 0, len(merchantTotals))
	for _, ms := range merchantTotals {
		merchants = append(merchants, *ms)
	}
	sort.Slice(merchants, func(i, j int) bool {
		if merchants[i].TotalAmount != merchants[j].TotalAmount {
			return merchants[i].TotalAmount > merchants[j].TotalAmount
		}
		return merchants[i].MerchantName < merchants[j].MerchantName
	})
	if len(merchants) > topMerchantLimit {
		merchants = merchants[:topMerchantLimit]
	}
	stats.TopMerchants = merchants

	return stats
}
