package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsync/internal/insights"
)

// GoogleClient writes analysis reports to a Google spreadsheet.
type GoogleClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ReportExporter = (*GoogleClient)(nil)

// NewGoogleClient creates a Sheets client using Service Account
// credentials. Auth comes from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleClient(ctx context.Context, spreadsheetID, sheetName string) (*GoogleClient, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Recurring"
	}

	credentialsJSON, err := resolveCredentials()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleClient{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func resolveCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentialsJSON, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentialsJSON, nil
}

// ExportReport appends one report block to the configured sheet: a header
// row for the user, one row per recurring pattern, and a forecast footer.
// Returns the range the block was written to.
func (c *GoogleClient) ExportReport(ctx context.Context, username string, analysis insights.PatternAnalysis, prediction insights.Prediction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	rows := [][]any{
		{username, analysis.AnalysisPeriod.StartDate, analysis.AnalysisPeriod.EndDate,
			analysis.TotalRecurringMerchants, analysis.MonthlyAverageRecurring},
	}
	for _, p := range analysis.RecurringPayments {
		lastPayment := ""
		if len(p.TransactionDates) > 0 {
			lastPayment = p.TransactionDates[len(p.TransactionDates)-1]
		}
		rows = append(rows, []any{
			p.MerchantName, p.CategoryCode, p.AverageAmount,
			p.Frequency, p.AverageIntervalDays, p.ConfidenceScore, lastPayment,
		})
	}
	rows = append(rows, []any{
		"forecast", prediction.NextMonth, prediction.TotalPredictedAmount, len(prediction.PredictedPayments),
	})

	lastRow := nextRow + len(rows) - 1
	dataRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, nextRow, lastRow)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write report to sheet %s: %w", c.sheetName, err)
	}
	return dataRange, nil
}
