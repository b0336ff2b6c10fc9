package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finsight/internal/config"
	"finsight/internal/core"
	ports "finsight/internal/export"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports reports to a Google Sheets spreadsheet, one row per report.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	reportsSheet  string
}

var _ ports.ReportExporter = (*Client)(nil)

// NewFromConfig creates a Sheets export client. User OAuth credentials from
// the config are preferred, service account credentials from the environment
// are the fallback.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.SheetsConfigured() {
		return nil, errors.New("sheets export not configured (set GOOGLE_SPREADSHEET_ID and GOOGLE_SHEET_NAME)")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		reportsSheet:  cfg.GoogleSheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	clientJSON, err := loadCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth client: %w", err)
	}
	tokenJSON, err := loadCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	if clientJSON != nil && tokenJSON != nil {
		slog.InfoContext(ctx, "Creating Google Sheets service with user OAuth credentials")

		oc, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(tokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("parse oauth token: %w", err)
		}

		return gsheet.NewService(ctx, goption.WithHTTPClient(oc.Client(ctx, &tok)))
	}

	// Service account fallback
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing credentials (set OAuth client and token, or GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with service account", "credentials_size", len(credentialsJSON))

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func loadCredential(inline, file string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	if strings.TrimSpace(file) != "" {
		return os.ReadFile(file)
	}
	return nil, nil
}

// ExportReport appends one report row to the reports sheet.
func (c *Client) ExportReport(ctx context.Context, id string, generatedAt time.Time, report core.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", c.reportsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.reportsSheet, err)
	}

	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:J%d", c.reportsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(id, generatedAt, report)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s in sheet %s: %w", dataRange, c.reportsSheet, err)
	}

	return dataRange, nil
}

// rowValues flattens a report into one spreadsheet row.
func rowValues(id string, generatedAt time.Time, r core.Report) []any {
	return []any{
		generatedAt.UTC().Format(time.RFC3339),
		id,
		r.MonthlyExpense,
		r.MonthlyBudget,
		r.BudgetStatus,
		r.BudgetLeft,
		r.CurrentBalance,
		r.SafetyPillowStatus,
		topCategoryName(r),
		strings.Join(r.Recommendations, "; "),
	}
}

func topCategoryName(r core.Report) string {
	if len(r.TopCategories) == 0 {
		return ""
	}
	return r.TopCategories[0].Category
}
