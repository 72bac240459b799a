// Package google exports reports to a Google Sheets spreadsheet so couples
// can keep a shared, append-only history of their monthly numbers.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/export"
	"bilancio/internal/services"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.ReportExporter = (*Client)(nil)

// New creates a Sheets exporter targeting the given spreadsheet and sheet.
// Credentials come from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportReport appends one summary row plus one row per spending category.
// Amounts are written as decimal units so the spreadsheet can sum them.
func (c *Client) ExportReport(ctx context.Context, coupleID string, report *services.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if report == nil {
		return "", errors.New("nil report")
	}

	rows := [][]any{
		{
			report.GeneratedAt.Format(time.RFC3339),
			coupleID,
			string(report.Period),
			report.StartDate.Format("2006-01-02"),
			report.EndDate.Format("2006-01-02"),
			"summary",
			float64(report.Snapshot.TotalIncome.Cents) / 100.0,
			float64(report.Snapshot.TotalExpenses.Cents) / 100.0,
			float64(report.Snapshot.Balance.Cents) / 100.0,
			string(report.Trend),
		},
	}
	for _, cat := range report.Snapshot.Categories {
		rows = append(rows, []any{
			report.GeneratedAt.Format(time.RFC3339),
			coupleID,
			string(report.Period),
			report.StartDate.Format("2006-01-02"),
			report.EndDate.Format("2006-01-02"),
			cat.Name,
			"",
			float64(cat.Amount.Cents) / 100.0,
			"",
			fmt.Sprintf("%.1f%%", cat.Percentage),
		})
	}

	rng := fmt.Sprintf("%s!A:J", c.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := c.sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Exported report to Google Sheets",
		"couple_id", coupleID,
		"period", report.Period,
		"rows", len(rows),
		"range", ref)

	return ref, nil
}
