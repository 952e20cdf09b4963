package insights

import (
	"math"
	"sort"
	"time"

	"finsync/internal/core"
)

// PredictNextMonth projects the next expected payment of every mined
// pattern and an aggregate next-month forecast. now anchors the forecast
// month and the fallback date for patterns with too little history.
func (e *Engine) PredictNextMonth(analysis PatternAnalysis, now time.Time) Prediction {
	payments := make([]PredictedPayment, 0, len(analysis.RecurringPayments))
	var confidenceSum float64
	var total int64

	for _, p := range analysis.RecurringPayments {
		freqPerMonth := float64(p.Frequency) / float64(e.cfg.WindowMonths)
		payment := PredictedPayment{
			MerchantName:      p.MerchantName,
			PredictedAmount:   int64(math.Round(p.AverageAmount)),
			PredictedDate:     nextPaymentDate(p.TransactionDates, now),
			ConfidenceScore:   p.ConfidenceScore,
			FrequencyPerMonth: freqPerMonth,
		}
		payments = append(payments, payment)
		confidenceSum += p.ConfidenceScore
		total += int64(math.Round(float64(payment.PredictedAmount) * freqPerMonth))
	}

	sort.Slice(payments, func(i, j int) bool {
		if payments[i].PredictedAmount != payments[j].PredictedAmount {
			return payments[i].PredictedAmount > payments[j].PredictedAmount
		}
		return payments[i].MerchantName < payments[j].MerchantName
	})

	confidence := 0.0
	if len(payments) > 0 {
		confidence = confidenceSum / float64(len(payments))
	}

	return Prediction{
		NextMonth:            now.AddDate(0, 1, 0).Format(core.MonthLayout),
		PredictedPayments:    payments,
		TotalPredictedAmount: total,
		PredictionConfidence: confidence,
		GeneratedAt:          now,
	}
}

// nextPaymentDate projects the next occurrence as the most recent date
// plus the truncated average interval. With fewer than two dates there is
// no interval to project from, so it falls back to one month from now.
func nextPaymentDate(dates []string, now time.Time) string {
	if len(dates) < 2 {
		return now.AddDate(0, 1, 0).Format(core.DateLayout)
	}

	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)

	intervals := dayIntervals(sorted)
	if len(intervals) == 0 {
		return now.AddDate(0, 1, 0).Format(core.DateLayout)
	}
	avgInterval := mean(intervals)

	last, err := time.Parse(core.DateLayout, sorted[len(sorted)-1])
	if err != nil {
		return now.AddDate(0, 1, 0).Format(core.DateLayout)
	}
	return last.AddDate(0, 0, int(avgInterval)).Format(core.DateLayout)
}

// PaymentCalendar places the predicted payments falling into the given
// year and month onto their dates. Predictions with an unparseable date
// are skipped.
func (e *Engine) PaymentCalendar(prediction Prediction, year, month int) Calendar {
	data := make(map[string][]CalendarEntry)
	var total int64
	for _, p := range prediction.PredictedPayments {
		total += p.PredictedAmount
		d, err := time.Parse(core.DateLayout, p.PredictedDate)
		if err != nil {
			continue
		}
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		data[p.PredictedDate] = append(data[p.PredictedDate], CalendarEntry{
			Date:            p.PredictedDate,
			MerchantName:    p.MerchantName,
			PredictedAmount: p.PredictedAmount,
			ConfidenceScore: p.ConfidenceScore,
			Type:            "predicted_recurring",
		})
	}
	return Calendar{
		Year:                 year,
		Month:                month,
		CalendarData:         data,
		TotalPredictedDays:   len(data),
		TotalPredictedAmount: total,
	}
}
