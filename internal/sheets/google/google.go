// Package google mirrors the ledger into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	ports "pocketledger/internal/sheets"
)

var _ ports.SnapshotWriter = (*Client)(nil)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Credentials selects the service account used to reach the API. JSON wins
// over File when both are set.
type Credentials struct {
	JSON string
	File string
}

// New creates a client for one tab of a spreadsheet.
func New(ctx context.Context, spreadsheetID, sheetName string, creds Credentials, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	if len(opts) == 0 {
		credentialsJSON, err := readCredentials(ctx, creds)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func readCredentials(ctx context.Context, creds Credentials) ([]byte, error) {
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(creds.JSON), nil
	case strings.TrimSpace(creds.File) != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", creds.File, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// WriteSnapshot clears the tab and writes the transaction table in A:E and
// the summary block in G:H.
func (c *Client) WriteSnapshot(ctx context.Context, s ledger.Snapshot) error {
	clearRange := fmt.Sprintf("%s!A:H", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	req := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*gsheet.ValueRange{
			{Range: fmt.Sprintf("%s!A1", c.sheetName), Values: transactionValues(s.Transactions)},
			{Range: fmt.Sprintf("%s!G1", c.sheetName), Values: summaryValues(s)},
		},
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", c.sheetName, err)
	}

	slog.InfoContext(ctx, "Ledger mirrored to Google Sheets",
		"sheet", c.sheetName, "rows", len(s.Transactions))
	return nil
}

// transactionValues renders a header plus one row per transaction. Amounts
// are signed numbers so the sheet can sum the column.
func transactionValues(txs []core.Transaction) [][]any {
	out := make([][]any, 0, len(txs)+1)
	out = append(out, []any{"Date", "Description", "Category", "Type", "Amount"})
	for _, t := range txs {
		amount := t.Amount.Float()
		if t.Type == core.Expense {
			amount = -amount
		}
		out = append(out, []any{t.Date.String(), t.Description, t.Category, t.Type.Label(), amount})
	}
	return out
}

func summaryValues(s ledger.Snapshot) [][]any {
	return [][]any{
		{"Currency", s.Currency},
		{"Starting Balance", s.Summary.StartingBalance.Float()},
		{"Total Income", s.Summary.TotalIncome.Float()},
		{"Total Expense", s.Summary.TotalExpense.Float()},
		{"Final Balance", s.Summary.Balance.Float()},
		{"Monthly Budget", s.Budget.Budget.Float()},
		{"Spent This Month", s.Summary.MonthlyExpense.Float()},
	}
}
