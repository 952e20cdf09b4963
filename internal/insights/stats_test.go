package insights

import (
	"math"
	"testing"

	"finsync/internal/core"
)

func TestIntervalConsistency(t *testing.T) {
	tests := []struct {
		name      string
		intervals []float64
		want      float64
		tolerance float64
	}{
		{name: "no intervals", intervals: nil, want: 0},
		{name: "single interval", intervals: []float64{30}, want: 0.8},
		{name: "identical monthly intervals", intervals: []float64{30, 30, 30}, want: 1.0},
		{name: "identical weekly intervals", intervals: []float64{7, 7, 7}, want: 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := intervalConsistency(tt.intervals)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("intervalConsistency(%v) = %v, want %v", tt.intervals, got, tt.want)
			}
		})
	}
}

func TestIntervalConsistency_MonthlyBandIsRelaxed(t *testing.T) {
	// Same variance, but a mean inside [28,32] gets the relaxed penalty.
	monthly := intervalConsistency([]float64{29, 31}) // mean 30
	offBand := intervalConsistency([]float64{19, 21}) // mean 20

	if monthly <= offBand {
		t.Errorf("monthly band score %v should exceed off-band score %v", monthly, offBand)
	}

	// mean 30, variance 1: 1/(1+10*1/900)
	want := 1.0 / (1.0 + 10.0/900.0)
	if math.Abs(monthly-want) > 1e-9 {
		t.Errorf("monthly score = %v, want %v", monthly, want)
	}
}

func TestFrequencyScore(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0},
		{2, 0},
		{3, 0.5},
		{4, 4.0 / 6.0},
		{5, 5.0 / 6.0},
		{6, 1.0},
		{12, 1.0},
	}
	for _, tt := range tests {
		if got := frequencyScore(tt.count); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("frequencyScore(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestAmountConsistency(t *testing.T) {
	tests := []struct {
		name     string
		variance float64
		average  float64
		want     float64
	}{
		{name: "zero average", variance: 10, average: 0, want: 0},
		{name: "negative average", variance: 10, average: -5, want: 0},
		{name: "identical amounts", variance: 0, average: 15000, want: 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amountConsistency(tt.variance, tt.average); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("amountConsistency(%v, %v) = %v, want %v", tt.variance, tt.average, got, tt.want)
			}
		})
	}
}

func TestAmountConsistency_PenaltyGrowsWithVariance(t *testing.T) {
	low := amountConsistency(100, 10000)
	high := amountConsistency(10000, 10000)
	if high >= low {
		t.Errorf("higher variance should score lower: low=%v high=%v", low, high)
	}
}

func TestConfidenceScore_Bounds(t *testing.T) {
	tests := []struct {
		name                        string
		interval, amount, frequency float64
		want                        float64
	}{
		{name: "all zero", want: 0},
		{name: "all one", interval: 1, amount: 1, frequency: 1, want: 1.0},
		{name: "NaN input", interval: math.NaN(), amount: 1, frequency: 1, want: 0},
		{name: "Inf input", interval: 1, amount: math.Inf(1), frequency: 1, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidenceScore(tt.interval, tt.amount, tt.frequency)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("confidenceScore = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("confidenceScore = %v, out of [0,1]", got)
			}
		})
	}
}

func TestConfidenceScore_Weights(t *testing.T) {
	// Interval regularity dominates the composite.
	got := confidenceScore(1, 0, 0)
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("interval-only score = %v, want 0.4", got)
	}
	got = confidenceScore(0, 1, 1)
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("amount+frequency score = %v, want 0.6", got)
	}
}

func TestPopulationVariance(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{name: "empty", vals: nil, want: 0},
		{name: "single value", vals: []float64{5}, want: 0},
		{name: "identical values", vals: []float64{3, 3, 3}, want: 0},
		{name: "spread", vals: []float64{2, 4}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := populationVariance(tt.vals); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("populationVariance(%v) = %v, want %v", tt.vals, got, tt.want)
			}
		})
	}
}

func TestSortedUniqueDates(t *testing.T) {
	txs := []core.Transaction{
		{TranDtime: "2024-03-15T10:00:00"},
		{TranDtime: "2024-01-15T09:30:00"},
		{TranDtime: "2024-03-15T18:00:00"}, // same date, different time
		{TranDtime: "not-a-date"},
		{TranDtime: "2024-02-15T12:00:00"},
	}
	got := sortedUniqueDates(txs)
	want := []string{"2024-01-15", "2024-02-15", "2024-03-15"}
	if len(got) != len(want) {
		t.Fatalf("got %v dates, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDayIntervals(t *testing.T) {
	dates := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	got := dayIntervals(dates)
	want := []float64{31, 29} // 2024 is a leap year
	if len(got) != len(want) {
		t.Fatalf("got %v intervals, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("intervals[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDayIntervals_Degenerate(t *testing.T) {
	if got := dayIntervals([]string{"2024-01-01"}); len(got) != 0 {
		t.Errorf("single date should produce no intervals, got %v", got)
	}
	if got := dayIntervals(nil); len(got) != 0 {
		t.Errorf("no dates should produce no intervals, got %v", got)
	}
}
