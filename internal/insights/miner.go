package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finsync/internal/core"
)

// AnalyzePatterns mines the recurring payment patterns of one user's
// transactions over the window [start, end]. The input may contain any
// transactions; the expense filter (negative amount, non-empty merchant)
// is applied here. Merchants whose analysis fails are excluded and
// logged, sibling merchants are unaffected.
func (e *Engine) AnalyzePatterns(ctx context.Context, txs []core.Transaction, start, end time.Time) PatternAnalysis {
	expenses := core.FilterExpenses(txs)

	groups := make(map[string][]core.Transaction)
	for _, t := range expenses {
		groups[t.MerchantName] = append(groups[t.MerchantName], t)
	}

	var patterns []RecurringPattern
	for merchant, merchantTxs := range groups {
		pattern, err := e.analyzeMerchant(merchant, merchantTxs)
		if err != nil {
			e.logger.WarnContext(ctx, "Merchant analysis failed, excluding merchant",
				"merchant", merchant,
				"transactions", len(merchantTxs),
				"error", err)
			continue
		}
		if pattern == nil {
			continue
		}
		if pattern.ConfidenceScore >= e.cfg.MinConfidence {
			patterns = append(patterns, *pattern)
		}
	}

	// Deterministic order: score descending, merchant name as tie-break,
	// so identical input always yields identical output.
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].ConfidenceScore != patterns[j].ConfidenceScore {
			return patterns[i].ConfidenceScore > patterns[j].ConfidenceScore
		}
		return patterns[i].MerchantName < patterns[j].MerchantName
	})

	var totalAmount int64
	highConfidence := 0
	breakdown := make(map[string]CategoryTotals)
	for _, p := range patterns {
		totalAmount += p.TotalAmount
		if p.ConfidenceScore >= e.cfg.HighConfidence {
			highConfidence++
		}
		if p.CategoryCode == "" {
			continue
		}
		ct := breakdown[p.CategoryCode]
		// AvgConfidence holds the running sum until all patterns are in.
		ct.PaymentCount++
		ct.TotalAmount += p.TotalAmount
		ct.AvgConfidence += p.ConfidenceScore
		breakdown[p.CategoryCode] = ct
	}
	for cat, ct := range breakdown {
		ct.AvgConfidence /= float64(ct.PaymentCount)
		breakdown[cat] = ct
	}

	return PatternAnalysis{
		AnalysisPeriod: AnalysisPeriod{
			StartDate: start.Format(core.DateLayout),
			EndDate:   end.Format(core.DateLayout),
			Days:      int(end.Sub(start).Hours() / 24),
		},
		RecurringPayments:       patterns,
		TotalRecurringMerchants: len(patterns),
		TotalRecurringAmount:    totalAmount,
		MonthlyAverageRecurring: totalAmount / int64(e.cfg.WindowMonths),
		CategoryBreakdown:       breakdown,
		HighConfidenceCount:     highConfidence,
	}
}

// analyzeMerchant computes the statistics of one merchant group. It
// returns nil when the group cannot form a pattern (fewer than two
// occurrences or no parseable dates at all).
func (e *Engine) analyzeMerchant(merchant string, txs []core.Transaction) (*RecurringPattern, error) {
	if len(txs) < 2 {
		return nil, nil
	}

	amounts := make([]float64, len(txs))
	var total int64
	for i, t := range txs {
		abs := t.AbsAmount()
		amounts[i] = float64(abs)
		total += abs
	}
	avgAmount := mean(amounts)
	amountVariance := populationVariance(amounts)

	dates := sortedUniqueDates(txs)
	if len(dates) == 0 {
		return nil, fmt.Errorf("merchant %q: no parseable transaction dates", merchant)
	}
	intervals := dayIntervals(dates)
	avgInterval := mean(intervals)

	score := confidenceScore(
		intervalConsistency(intervals),
		amountConsistency(amountVariance, avgAmount),
		frequencyScore(len(txs)),
	)

	return &RecurringPattern{
		MerchantName:        merchant,
		Frequency:           len(txs),
		AverageAmount:       avgAmount,
		AmountVariance:      amountVariance,
		TotalAmount:         total,
		ConfidenceScore:     score,
		AverageIntervalDays: avgInterval,
		CategoryCode:        txs[0].CategoryCode,
		TransactionDates:    dates,
		Source:              txs[0].Source,
	}, nil
}
