package insights

import "time"

// RecurringPattern is one qualifying merchant inside an analysis window.
// It only exists when the merchant was seen at least twice and its
// confidence score reached the qualification threshold.
type RecurringPattern struct {
	MerchantName        string   `json:"merchant_name"`
	Frequency           int      `json:"frequency"`
	AverageAmount       float64  `json:"average_amount"`
	AmountVariance      float64  `json:"amount_variance"`
	TotalAmount         int64    `json:"total_amount"`
	ConfidenceScore     float64  `json:"confidence_score"`
	AverageIntervalDays float64  `json:"average_interval_days"`
	CategoryCode        string   `json:"category_code,omitempty"`
	TransactionDates    []string `json:"transaction_dates"`
	Source              string   `json:"source,omitempty"`
}

// AnalysisPeriod describes the trailing window a pattern analysis covers.
type AnalysisPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// CategoryTotals is the compact per-category rollup inside a pattern analysis.
type CategoryTotals struct {
	PaymentCount  int     `json:"payment_count"`
	TotalAmount   int64   `json:"total_amount"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// PatternAnalysis is the full output of the pattern miner.
type PatternAnalysis struct {
	AnalysisPeriod          AnalysisPeriod            `json:"analysis_period"`
	RecurringPayments       []RecurringPattern        `json:"recurring_payments"`
	TotalRecurringMerchants int                       `json:"total_recurring_merchants"`
	TotalRecurringAmount    int64                     `json:"total_recurring_amount"`
	MonthlyAverageRecurring int64                     `json:"monthly_average_recurring"`
	CategoryBreakdown       map[string]CategoryTotals `json:"category_breakdown"`
	HighConfidenceCount     int                       `json:"high_confidence_count"`
}

// PredictedPayment projects the next occurrence of a recurring pattern.
type PredictedPayment struct {
	MerchantName      string  `json:"merchant_name"`
	PredictedAmount   int64   `json:"predicted_amount"`
	PredictedDate     string  `json:"predicted_date"`
	ConfidenceScore   float64 `json:"confidence_score"`
	FrequencyPerMonth float64 `json:"frequency_per_month"`
}

// Prediction is the aggregate next-month forecast.
type Prediction struct {
	NextMonth            string             `json:"next_month"`
	PredictedPayments    []PredictedPayment `json:"predicted_payments"`
	TotalPredictedAmount int64              `json:"total_predicted_amount"`
	PredictionConfidence float64            `json:"prediction_confidence"`
	GeneratedAt          time.Time          `json:"generated_at"`
}

// Anomaly types.
const (
	AnomalyOverspend = "overspend"
	AnomalySaving    = "saving"
)

// Anomaly is a current-period transaction deviating from its pattern's
// average beyond the configured percentage threshold.
type Anomaly struct {
	MerchantName         string  `json:"merchant_name"`
	TransactionDate      string  `json:"transaction_date"`
	CurrentAmount        int64   `json:"current_amount"`
	ExpectedAmount       int64   `json:"expected_amount"`
	Difference           int64   `json:"difference"`
	PercentageDifference float64 `json:"percentage_difference"`
	AnomalyType          string  `json:"anomaly_type"`
	ConfidenceScore      float64 `json:"confidence_score"`
}

// AnomalyReport is the aggregate anomaly-detection output.
type AnomalyReport struct {
	CurrentMonth        string    `json:"current_month"`
	ThresholdPercentage float64   `json:"threshold_percentage"`
	Anomalies           []Anomaly `json:"anomalies"`
	AnomalyCount        int       `json:"anomaly_count"`
	TotalAnomalyAmount  int64     `json:"total_anomaly_amount"`
	AnalyzedAt          time.Time `json:"analyzed_at"`
}

// MerchantAmount pairs a merchant with its average recurring amount.
type MerchantAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// CategorySummary rolls the qualifying patterns of one category up.
type CategorySummary struct {
	Category            string           `json:"category"`
	MerchantCount       int              `json:"merchant_count"`
	TotalMonthlyAverage int64            `json:"total_monthly_average"`
	ConfidenceScore     float64          `json:"confidence_score"`
	Merchants           []MerchantAmount `json:"merchants"`
}

// UncategorizedPayment is a qualifying pattern without a category code.
type UncategorizedPayment struct {
	MerchantName  string  `json:"merchant_name"`
	AverageAmount float64 `json:"average_amount"`
	Frequency     int     `json:"frequency"`
}

// CategoryAnalysis groups qualifying patterns by category.
type CategoryAnalysis struct {
	CategoryAnalysis      map[string]CategorySummary `json:"category_analysis"`
	UncategorizedPayments []UncategorizedPayment     `json:"uncategorized_payments"`
	TotalCategories       int                        `json:"total_categories"`
	AnalysisPeriodMonths  int                        `json:"analysis_period_months"`
}

// TopPayment is one of the largest recurring payments in a summary.
type TopPayment struct {
	Merchant   string  `json:"merchant"`
	Amount     float64 `json:"amount"`
	Confidence float64 `json:"confidence"`
}

// Summary condenses the current analysis and the next-month forecast.
type Summary struct {
	CurrentMonthlyAverage   int64        `json:"current_monthly_average"`
	NextMonthPredicted      int64        `json:"next_month_predicted"`
	TotalRecurringMerchants int          `json:"total_recurring_merchants"`
	HighConfidenceCount     int          `json:"high_confidence_count"`
	TopPayments             []TopPayment `json:"top_5_payments"`
	SavingsOpportunity      int64        `json:"savings_opportunity"`
	AnalysisPeriodMonths    int          `json:"analysis_period_months"`
	GeneratedAt             time.Time    `json:"generated_at"`
}

// CalendarEntry is one predicted payment placed on a calendar date.
type CalendarEntry struct {
	Date            string  `json:"date"`
	MerchantName    string  `json:"merchant_name"`
	PredictedAmount int64   `json:"predicted_amount"`
	ConfidenceScore float64 `json:"confidence_score"`
	Type            string  `json:"type"`
}

// Calendar maps the predicted payments of one month onto dates.
type Calendar struct {
	Year                 int                        `json:"year"`
	Month                int                        `json:"month"`
	CalendarData         map[string][]CalendarEntry `json:"calendar_data"`
	TotalPredictedDays   int                        `json:"total_predicted_days"`
	TotalPredictedAmount int64                      `json:"total_predicted_amount"`
}
