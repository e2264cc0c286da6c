// Package google exports leads to a Google Sheet using a service account.
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

	"mfdist/internal/core"
	"mfdist/internal/leads"
)

var _ leads.Exporter = (*Exporter)(nil)

// HeaderRow is written to an empty leads sheet.
var HeaderRow = []any{"Ref", "Submitted At", "Name", "Email", "Phone", "Amount", "Preferred Fund"}

// Options configures an Exporter. Exactly one of CredentialsJSON and
// CredentialsFile is needed; GOOGLE_APPLICATION_CREDENTIALS is used when both
// are empty.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// OptionsFromEnv reads GOOGLE_SPREADSHEET_ID, GOOGLE_LEADS_SHEET_NAME
// (default "Leads"), GOOGLE_SERVICE_ACCOUNT_JSON and GOOGLE_SERVICE_ACCOUNT_FILE.
func OptionsFromEnv() Options {
	return Options{
		SpreadsheetID:   strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SheetName:       strings.TrimSpace(os.Getenv("GOOGLE_LEADS_SHEET_NAME")),
		CredentialsJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
	}
}

// NewFromEnv builds an Exporter from OptionsFromEnv.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	return New(ctx, OptionsFromEnv())
}

func New(ctx context.Context, opts Options) (*Exporter, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if opts.SheetName == "" {
		opts.SheetName = "Leads"
	}

	creds, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets lead exporter ready", "sheet", opts.SheetName)
	return &Exporter{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     opts.SheetName,
	}, nil
}

func credentials(opts Options) ([]byte, error) {
	file := opts.CredentialsFile
	if opts.CredentialsJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case opts.CredentialsJSON != "":
		return []byte(opts.CredentialsJSON), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// EnsureHeader writes HeaderRow when the first row of the sheet is empty.
func (e *Exporter) EnsureHeader(ctx context.Context) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:G1", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{HeaderRow}}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	return nil
}

// Export appends one row per lead and returns the updated range.
func (e *Exporter) Export(ctx context.Context, ref string, c core.Customer) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{leadRow(ref, c)}}
	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append lead %s to %s: %w", ref, e.sheetName, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// leadRow lays out a lead in HeaderRow order. Text cells that a spreadsheet
// would read as a formula or number are prefixed with a quote.
func leadRow(ref string, c core.Customer) []any {
	return []any{
		ref,
		c.SubmittedAt.UTC().Format(time.DateTime),
		escapeCell(c.Name),
		escapeCell(c.Email),
		escapeCell(c.Phone),
		core.Round2(c.Amount),
		escapeCell(c.PreferredFund),
	}
}

func escapeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\'':
		return "'" + s
	}
	if s[0] >= '0' && s[0] <= '9' {
		return "'" + s
	}
	return s
}
