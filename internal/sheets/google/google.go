package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "pennywise/internal/sheets"
)

// Columns A:H of the ledger sheet.
var header = []any{"ID", "User", "Date", "Description", "Amount", "Category", "Goal ID", "Budget ID"}

type Options struct {
	SpreadsheetID string
	SheetName     string
	// Service account credentials, inline or from a file. When both are
	// empty GOOGLE_APPLICATION_CREDENTIALS is used.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ ports.LedgerMirror = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Ledger"
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheet: opts.SheetName}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	file := strings.TrimSpace(opts.CredentialsFile)
	if opts.CredentialsJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "component", "sheets")
	return service, nil
}

// EnsureHeader writes the column titles when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheet+"!A1:H1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheet, err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.sheet+"!A1:H1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheet, err)
	}
	return nil
}

// Append writes row unless the sheet already holds its transaction, in
// which case the existing row's range is returned. Redelivered events thus
// leave a single row.
func (c *Client) Append(ctx context.Context, row ports.LedgerRow) (string, error) {
	if row.TransactionID <= 0 {
		return "", fmt.Errorf("invalid transaction id %d", row.TransactionID)
	}
	idx, err := c.findRow(ctx, row.TransactionID)
	if err != nil {
		return "", err
	}
	if idx >= 0 {
		slog.DebugContext(ctx, "Transaction already in sheet, skipping append",
			"component", "sheets", "transaction_id", row.TransactionID)
		return c.rowRange(idx), nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{rowValues(row)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheet+"!A:H", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return c.sheet, nil
}

// Remove clears the row holding transactionID. The row is cleared rather
// than deleted so references returned by Append stay valid.
func (c *Client) Remove(ctx context.Context, transactionID int64) error {
	idx, err := c.findRow(ctx, transactionID)
	if err != nil {
		return err
	}
	if idx < 0 {
		slog.WarnContext(ctx, "Transaction not found in sheet, nothing to remove",
			"component", "sheets", "transaction_id", transactionID)
		return nil
	}
	rng := c.rowRange(idx)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// findRow returns the zero-based row holding transactionID, or -1.
func (c *Client) findRow(ctx context.Context, transactionID int64) (int, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return -1, fmt.Errorf("read ids of %s: %w", c.sheet, err)
	}
	return rowIndex(resp.Values, transactionID), nil
}

func (c *Client) rowRange(idx int) string {
	return fmt.Sprintf("%s!A%d:H%d", c.sheet, idx+1, idx+1)
}

func rowValues(r ports.LedgerRow) []any {
	return []any{
		r.TransactionID,
		r.Username,
		r.Date,
		r.Description,
		r.Amount.String(),
		r.Category,
		optionalID(r.GoalID),
		optionalID(r.BudgetID),
	}
}

func optionalID(id *int64) any {
	if id == nil {
		return ""
	}
	return *id
}

// rowIndex returns the zero-based row whose first cell is id, or -1.
func rowIndex(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == want {
			return i
		}
	}
	return -1
}
