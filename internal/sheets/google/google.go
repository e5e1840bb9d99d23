package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"hearth/internal/config"
	"hearth/internal/core"
	ports "hearth/internal/sheets"
)

// Client writes monthly household reports to a Google spreadsheet. One
// row per (household, year, month); a re-export overwrites the row.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// NewClient creates a Sheets client from the OAuth client and token
// configured in cfg, either inline JSON or file paths.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.SheetsConfigured() {
		return nil, errors.New("sheets export is not configured")
	}

	clientJSON, err := readCredential(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth client: %w", err)
	}
	tokenJSON, err := readCredential(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load OAuth token: %w", err)
	}

	oauthCfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

func readCredential(inlineJSON, filePath string) ([]byte, error) {
	if strings.TrimSpace(inlineJSON) != "" {
		return []byte(inlineJSON), nil
	}
	if filePath != "" {
		return os.ReadFile(filePath)
	}
	return nil, errors.New("no inline JSON or file path provided")
}

// AppendMonthlyReport implements ports.ReportWriter
func (c *Client) AppendMonthlyReport(ctx context.Context, r core.MonthlyReport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Read the key columns to find an existing row for this month.
	keyRange := fmt.Sprintf("%s!A:C", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, keyRange).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", keyRange, err)
	}

	row := findReportRow(resp.Values, r.HouseholdID, r.Year, r.Month)
	if row == 0 {
		row = len(resp.Values) + 1
	}

	dataRange := fmt.Sprintf("%s!A%d:H%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.HouseholdID,
		r.Year,
		r.Month,
		r.HouseholdName,
		r.Income.String(),
		r.Expenses.String(),
		r.Savings.String(),
		r.GeneratedAt.Format("2006-01-02 15:04:05"),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}
