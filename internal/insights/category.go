package insights

import "sort"

// AggregateByCategory rolls the qualifying patterns up by category code.
// Pure grouping and reduction, no further statistical inference.
func (e *Engine) AggregateByCategory(analysis PatternAnalysis) CategoryAnalysis {
	categories := make(map[string]CategorySummary)
	var uncategorized []UncategorizedPayment

	for _, p := range analysis.RecurringPayments {
		if p.CategoryCode == "" {
			uncategorized = append(uncategorized, UncategorizedPayment{
				MerchantName:  p.MerchantName,
				AverageAmount: p.AverageAmount,
				Frequency:     p.Frequency,
			})
			continue
		}

		summary := categories[p.CategoryCode]
		summary.Category = p.CategoryCode
		summary.MerchantCount++
		summary.TotalMonthlyAverage += p.TotalAmount / int64(e.cfg.WindowMonths)
		// Running sum, divided once all merchants are collected.
		summary.ConfidenceScore += p.ConfidenceScore
		summary.Merchants = append(summary.Merchants, MerchantAmount{
			Name:   p.MerchantName,
			Amount: p.AverageAmount,
		})
		categories[p.CategoryCode] = summary
	}

	for code, summary := range categories {
		summary.ConfidenceScore /= float64(summary.MerchantCount)
		sort.Slice(summary.Merchants, func(i, j int) bool {
			return summary.Merchants[i].Name < summary.Merchants[j].Name
		})
		categories[code] = summary
	}

	return CategoryAnalysis{
		CategoryAnalysis:      categories,
		UncategorizedPayments: uncategorized,
		TotalCategories:       len(categories),
		AnalysisPeriodMonths:  e.cfg.WindowMonths,
	}
}

// Summarize condenses a pattern analysis and its matching prediction into
// the dashboard summary: monthly average, forecast, top payments by
// average amount and the clamped savings opportunity.
func (e *Engine) Summarize(analysis PatternAnalysis, prediction Prediction) Summary {
	payments := make([]RecurringPattern, len(analysis.RecurringPayments))
	copy(payments, analysis.RecurringPayments)
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].AverageAmount != payments[j].AverageAmount {
			return payments[i].AverageAmount > payments[j].AverageAmount
		}
		return payments[i].MerchantName < payments[j].MerchantName
	})
	if len(payments) > 5 {
		payments = payments[:5]
	}

	top := make([]TopPayment, len(payments))
	for i, p := range payments {
		top[i] = TopPayment{
			Merchant:   p.MerchantName,
			Amount:     p.AverageAmount,
			Confidence: p.ConfidenceScore,
		}
	}

	savings := analysis.MonthlyAverageRecurring - prediction.TotalPredictedAmount
	if savings < 0 {
		savings = 0
	}

	return Summary{
		CurrentMonthlyAverage:   analysis.MonthlyAverageRecurring,
		NextMonthPredicted:      prediction.TotalPredictedAmount,
		TotalRecurringMerchants: analysis.TotalRecurringMerchants,
		HighConfidenceCount:     analysis.HighConfidenceCount,
		TopPayments:             top,
		SavingsOpportunity:      savings,
		AnalysisPeriodMonths:    e.cfg.WindowMonths,
		GeneratedAt:             prediction.GeneratedAt,
	}
}
