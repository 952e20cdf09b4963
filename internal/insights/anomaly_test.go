package insights

import (
	"math"
	"testing"
	"time"

	"finsync/internal/core"
)

func anomalyFixture() PatternAnalysis {
	return PatternAnalysis{
		RecurringPayments: []RecurringPattern{
			{MerchantName: "Netflix", AverageAmount: 10000, ConfidenceScore: 0.95},
			{MerchantName: "Gym", AverageAmount: 50000, ConfidenceScore: 0.83},
		},
	}
}

func TestDetectAnomalies(t *testing.T) {
	e := testEngine()
	now := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)

	current := []core.Transaction{
		// +30 percent, flagged as overspend.
		{TranDtime: "2023-06-10T10:00:00", Amount: -13000, MerchantName: "Netflix"},
		// -5 percent, inside the threshold.
		{TranDtime: "2023-06-03T08:00:00", Amount: -47500, MerchantName: "Gym"},
		// No matching pattern.
		{TranDtime: "2023-06-12T12:00:00", Amount: -80000, MerchantName: "Dentist"},
		// Income is ignored.
		{TranDtime: "2023-06-25T09:00:00", Amount: 3200000, MerchantName: "Employer"},
	}

	report := e.DetectAnomalies(anomalyFixture(), current, 20.0, now)

	if report.AnomalyCount != 1 {
		t.Fatalf("AnomalyCount = %d, want 1", report.AnomalyCount)
	}
	a := report.Anomalies[0]
	if a.MerchantName != "Netflix" {
		t.Errorf("MerchantName = %q, want Netflix", a.MerchantName)
	}
	if a.AnomalyType != AnomalyOverspend {
		t.Errorf("AnomalyType = %q, want %q", a.AnomalyType, AnomalyOverspend)
	}
	if a.CurrentAmount != 13000 || a.ExpectedAmount != 10000 || a.Difference != 3000 {
		t.Errorf("amounts = (%d, %d, %d), want (13000, 10000, 3000)",
			a.CurrentAmount, a.ExpectedAmount, a.Difference)
	}
	if math.Abs(a.PercentageDifference-30.0) > 1e-9 {
		t.Errorf("PercentageDifference = %v, want 30", a.PercentageDifference)
	}
	if a.ConfidenceScore != 0.95 {
		t.Errorf("ConfidenceScore = %v, want 0.95", a.ConfidenceScore)
	}
	if report.CurrentMonth != "2023-06" {
		t.Errorf("CurrentMonth = %q, want 2023-06", report.CurrentMonth)
	}
	if report.TotalAnomalyAmount != 3000 {
		t.Errorf("TotalAnomalyAmount = %d, want 3000", report.TotalAnomalyAmount)
	}
}

func TestDetectAnomalies_SavingType(t *testing.T) {
	e := testEngine()
	now := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)
	current := []core.Transaction{
		// -50 percent against the 50000 average.
		{TranDtime: "2023-06-03T08:00:00", Amount: -25000, MerchantName: "Gym"},
	}

	report := e.DetectAnomalies(anomalyFixture(), current, 20.0, now)
	if report.AnomalyCount != 1 {
		t.Fatalf("AnomalyCount = %d, want 1", report.AnomalyCount)
	}
	a := report.Anomalies[0]
	if a.AnomalyType != AnomalySaving {
		t.Errorf("AnomalyType = %q, want %q", a.AnomalyType, AnomalySaving)
	}
	if a.Difference != -25000 {
		t.Errorf("Difference = %d, want -25000", a.Difference)
	}
}

func TestDetectAnomalies_ThresholdIsExclusive(t *testing.T) {
	e := testEngine()
	now := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)
	// Exactly 20 percent deviation does not cross a 20 percent threshold.
	current := []core.Transaction{
		{TranDtime: "2023-06-10T10:00:00", Amount: -12000, MerchantName: "Netflix"},
	}

	report := e.DetectAnomalies(anomalyFixture(), current, 20.0, now)
	if report.AnomalyCount != 0 {
		t.Errorf("AnomalyCount = %d, want 0", report.AnomalyCount)
	}
}

func TestDetectAnomalies_DefaultThreshold(t *testing.T) {
	e := testEngine()
	now := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)
	current := []core.Transaction{
		{TranDtime: "2023-06-10T10:00:00", Amount: -13000, MerchantName: "Netflix"},
	}

	report := e.DetectAnomalies(anomalyFixture(), current, 0, now)
	if report.ThresholdPercentage != 20.0 {
		t.Errorf("ThresholdPercentage = %v, want the 20.0 default", report.ThresholdPercentage)
	}
	if report.AnomalyCount != 1 {
		t.Errorf("AnomalyCount = %d, want 1", report.AnomalyCount)
	}
}

func TestDetectAnomalies_SortedByMagnitude(t *testing.T) {
	e := testEngine()
	now := time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC)
	current := []core.Transaction{
		{TranDtime: "2023-06-10T10:00:00", Amount: -13000, MerchantName: "Netflix"}, // +30%
		{TranDtime: "2023-06-03T08:00:00", Amount: -90000, MerchantName: "Gym"},     // +80%
	}

	report := e.DetectAnomalies(anomalyFixture(), current, 20.0, now)
	if report.AnomalyCount != 2 {
		t.Fatalf("AnomalyCount = %d, want 2", report.AnomalyCount)
	}
	if report.Anomalies[0].MerchantName != "Gym" {
		t.Errorf("largest deviation first: got %q", report.Anomalies[0].MerchantName)
	}
}
