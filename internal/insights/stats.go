// Package insights implements the recurring-payment analysis engine:
// pattern mining over merchant transaction history, next-month payment
// prediction, anomaly detection against mined patterns, and category
// rollups. Everything here is a pure function of its inputs; the engine
// performs no I/O and keeps no state between calls.
package insights

import (
	"math"
	"sort"
	"time"

	"finsync/internal/core"
)

// Monthly cadence bounds. An average interval inside this band gets the
// relaxed variance penalty: subscription debits drift a few days around
// month boundaries without being any less regular.
const (
	monthlyIntervalLow  = 28.0
	monthlyIntervalHigh = 32.0
)

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// populationVariance returns the population variance around the mean,
// clamped to 0 when the input is degenerate or the result is non-finite.
func populationVariance(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	v := sum / float64(len(vals))
	if !isFinite(v) {
		return 0
	}
	return v
}

// sortedUniqueDates extracts calendar dates from the transactions, sorted
// and de-duplicated. Transactions with a malformed datetime are skipped.
func sortedUniqueDates(txs []core.Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	var dates []string
	for _, t := range txs {
		d := t.Date()
		if _, err := time.Parse(core.DateLayout, d); err != nil {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// dayIntervals returns the absolute day gaps between consecutive sorted
// dates, discarding zero-length gaps. Unparseable dates drop only the
// interval they would have contributed to.
func dayIntervals(dates []string) []float64 {
	var intervals []float64
	for i := 1; i < len(dates); i++ {
		prev, err := time.Parse(core.DateLayout, dates[i-1])
		if err != nil {
			continue
		}
		cur, err := time.Parse(core.DateLayout, dates[i])
		if err != nil {
			continue
		}
		days := math.Abs(cur.Sub(prev).Hours() / 24)
		if days == 0 {
			continue
		}
		intervals = append(intervals, days)
	}
	return intervals
}

// intervalConsistency scores how uniformly spaced the gaps are, in [0,1].
// A single interval is weak positive evidence (one regular repeat) and
// scores 0.8; no interval scores 0.
func intervalConsistency(intervals []float64) float64 {
	switch len(intervals) {
	case 0:
		return 0
	case 1:
		return 0.8
	}

	m := mean(intervals)
	variance := populationVariance(intervals)

	var score float64
	if m >= monthlyIntervalLow && m <= monthlyIntervalHigh {
		score = 1.0 / (1.0 + 10.0*variance/(m*m))
	} else {
		score = 1.0 / (1.0 + variance/m)
	}
	if !isFinite(score) {
		return 0
	}
	return score
}

// frequencyScore scales occurrence count into [0,1]: nothing below 3,
// linear up to 6, saturated above.
func frequencyScore(count int) float64 {
	if count < 3 {
		return 0
	}
	if count >= 6 {
		return 1.0
	}
	return float64(count) / 6.0
}

// amountConsistency scores amount regularity in [0,1]. Identical amounts
// score 1; the penalty grows with the variance relative to the squared
// average.
func amountConsistency(variance, average float64) float64 {
	if average <= 0 {
		return 0
	}
	if variance == 0 {
		return 1.0
	}
	score := 1.0 / (1.0 + 100.0*variance/(average*average))
	if !isFinite(score) {
		return 0
	}
	return score
}

// Confidence weights. Interval regularity dominates: uniform spacing is
// the strongest recurrence signal, amount stability and raw frequency
// support it.
const (
	weightInterval  = 0.4
	weightAmount    = 0.3
	weightFrequency = 0.3
)

// confidenceScore combines the three component scores into [0,1].
func confidenceScore(intervalScore, amountScore, freqScore float64) float64 {
	if !isFinite(intervalScore) || !isFinite(amountScore) || !isFinite(freqScore) {
		return 0
	}
	score := weightInterval*intervalScore + weightAmount*amountScore + weightFrequency*freqScore
	if !isFinite(score) {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
