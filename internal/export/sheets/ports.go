// Package sheets exports analysis reports to a spreadsheet.
package sheets

import (
	"context"

	"finsync/internal/insights"
)

// ReportExporter writes one user's analysis report to an external sheet.
type ReportExporter interface {
	ExportReport(ctx context.Context, username string, analysis insights.PatternAnalysis, prediction insights.Prediction) (string, error)
}
