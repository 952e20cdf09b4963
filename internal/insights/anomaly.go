package insights

import (
	"math"
	"sort"
	"strings"
	"time"

	"finsync/internal/core"
)

// DetectAnomalies compares the current period's transactions against the
// mined patterns and flags the ones deviating from their pattern's
// average beyond threshold percent. A threshold of 0 or below falls back
// to the engine default. Transactions without a matching pattern produce
// nothing.
func (e *Engine) DetectAnomalies(analysis PatternAnalysis, current []core.Transaction, threshold float64, now time.Time) AnomalyReport {
	if threshold <= 0 {
		threshold = e.cfg.AnomalyThreshold
	}

	byMerchant := make(map[string]RecurringPattern, len(analysis.RecurringPayments))
	for _, p := range analysis.RecurringPayments {
		byMerchant[p.MerchantName] = p
	}

	var anomalies []Anomaly
	var totalDiff int64
	for _, t := range current {
		if !t.IsExpense() || strings.TrimSpace(t.MerchantName) == "" {
			continue
		}
		pattern, ok := byMerchant[t.MerchantName]
		if !ok {
			continue
		}

		expected := int64(pattern.AverageAmount)
		if expected == 0 {
			continue
		}
		diff := t.AbsAmount() - expected
		pctDiff := float64(diff) / float64(expected) * 100

		if math.Abs(pctDiff) <= threshold {
			continue
		}

		anomalyType := AnomalySaving
		if diff > 0 {
			anomalyType = AnomalyOverspend
		}
		anomalies = append(anomalies, Anomaly{
			MerchantName:         t.MerchantName,
			TransactionDate:      t.Date(),
			CurrentAmount:        t.AbsAmount(),
			ExpectedAmount:       expected,
			Difference:           diff,
			PercentageDifference: pctDiff,
			AnomalyType:          anomalyType,
			ConfidenceScore:      pattern.ConfidenceScore,
		})
		totalDiff += diff
	}

	sort.Slice(anomalies, func(i, j int) bool {
		pi, pj := math.Abs(anomalies[i].PercentageDifference), math.Abs(anomalies[j].PercentageDifference)
		if pi != pj {
			return pi > pj
		}
		return anomalies[i].MerchantName < anomalies[j].MerchantName
	})

	return AnomalyReport{
		CurrentMonth:        now.Format(core.MonthLayout),
		ThresholdPercentage: threshold,
		Anomalies:           anomalies,
		AnomalyCount:        len(anomalies),
		TotalAnomalyAmount:  totalDiff,
		AnalyzedAt:          now,
	}
}
