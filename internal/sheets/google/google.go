package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dompet/internal/core"
	ports "dompet/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultPeriodsSheet = "Periods"
	DefaultArchiveSheet = "Archive"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	periodsSheet  string
	archiveSheet  string
}

var _ ports.ArchiveExporter = (*Client)(nil)

// Options selects the spreadsheet and sheet tabs written by the exporter.
type Options struct {
	SpreadsheetID string
	PeriodsSheet  string
	ArchiveSheet  string
}

// New creates an exporter authenticated with the service account found in
// the environment.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.PeriodsSheet == "" {
		opts.PeriodsSheet = DefaultPeriodsSheet
	}
	if opts.ArchiveSheet == "" {
		opts.ArchiveSheet = DefaultArchiveSheet
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		periodsSheet:  opts.PeriodsSheet,
		archiveSheet:  opts.ArchiveSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func serviceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// ExportPeriod appends the period summary to the periods sheet and its
// transactions to the archive sheet. The returned reference is the range the
// summary row landed in.
func (c *Client) ExportPeriod(ctx context.Context, p core.Period, txs []core.ArchivedTransaction) (string, error) {
	summary := &gsheet.ValueRange{Values: [][]any{ports.PeriodRow(p)}}
	resp, err := c.append(ctx, sheetRange(c.periodsSheet, "A", "I"), summary)
	if err != nil {
		return "", fmt.Errorf("append period summary: %w", err)
	}

	if len(txs) > 0 {
		rows := &gsheet.ValueRange{Values: ports.TransactionRows(txs)}
		if _, err := c.append(ctx, sheetRange(c.archiveSheet, "A", "I"), rows); err != nil {
			return "", fmt.Errorf("append archived transactions: %w", err)
		}
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Period exported to Google Sheets",
		"period_id", p.ID,
		"transactions", len(txs),
		"sheets_ref", ref)
	return ref, nil
}

func (c *Client) append(ctx context.Context, rng string, vr *gsheet.ValueRange) (*gsheet.AppendValuesResponse, error) {
	return c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
}

// sheetRange builds an A1 range, quoting sheet names that contain spaces or
// quotes.
func sheetRange(sheet, from, to string) string {
	name := sheet
	if strings.ContainsAny(sheet, " '!") {
		name = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return fmt.Sprintf("%s!%s:%s", name, from, to)
}
