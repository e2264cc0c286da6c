package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"mfdist/internal/core"
)

// Export states of a lead row. A lead in ExportError is retried; ExportFailed
// is final until RetryFailedExports resets it.
const (
	ExportPending   = "pending"
	ExportExporting = "exporting"
	ExportExported  = "exported"
	ExportError     = "error"
	ExportFailed    = "failed"
)

var (
	ErrLeadNotFound = errors.New("lead not found")
	// ErrLeadClaimed means another consumer holds the lead or it is no
	// longer exportable.
	ErrLeadClaimed = errors.New("lead not claimable")
)

// Lead is a stored customer submission.
type Lead struct {
	ID           int64
	Customer     core.Customer
	ExportStatus   string
	ExportError    string
	ExportAttempts int
	ExportedAt     *time.Time
}

// Ref is the lead id as handed to callers outside storage.
func (l Lead) Ref() string {
	return strconv.FormatInt(l.ID, 10)
}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens dbPath, creating its directory, and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent form posts.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateLead stores c as pending export and returns its id.
func (r *SQLiteRepository) CreateLead(ctx context.Context, c core.Customer) (int64, error) {
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO leads (name, email, phone, amount, preferred_fund, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.Phone, c.Amount, c.PreferredFund, formatTime(c.SubmittedAt))
	if err != nil {
		return 0, fmt.Errorf("insert lead: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("lead id: %w", err)
	}

	slog.DebugContext(ctx, "Lead saved to SQLite", "id", id, "fund", c.PreferredFund)
	return id, nil
}

const leadColumns = `id, name, email, phone, amount, preferred_fund, submitted_at,
	export_status, export_error, export_attempts, exported_at`

// exportable matches leads a consumer may claim: never tried, failed last
// time, or claimed before the stale cutoff (the claimer died mid-export).
const exportable = `(export_status IN ('pending', 'error')
	OR (export_status = 'exporting' AND export_claimed_at < ?))`

func (r *SQLiteRepository) GetLead(ctx context.Context, id int64) (*Lead, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lead %d: %w", id, ErrLeadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lead %d: %w", id, err)
	}
	return lead, nil
}

// ListLeads returns the most recent leads first.
func (r *SQLiteRepository) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.queryLeads(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY id DESC LIMIT ?`, limit)
}

// GetPendingExportLeads returns up to limit exportable leads, oldest first.
// Claims taken before staleBefore count as abandoned.
func (r *SQLiteRepository) GetPendingExportLeads(ctx context.Context, limit int, staleBefore time.Time) ([]Lead, error) {
	return r.queryLeads(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE `+exportable+`
		 ORDER BY id ASC LIMIT ?`, staleBefore.UnixMilli(), limit)
}

// ClaimLead moves an exportable lead to ExportExporting and returns its
// attempt number. ErrLeadClaimed is returned when the lead is exported,
// failed for good, or held by a claim newer than staleBefore.
func (r *SQLiteRepository) ClaimLead(ctx context.Context, id int64, at, staleBefore time.Time) (int, error) {
	var attempts int
	err := r.db.QueryRowContext(ctx,
		`UPDATE leads
		 SET export_status = 'exporting', export_attempts = export_attempts + 1, export_claimed_at = ?
		 WHERE id = ? AND `+exportable+`
		 RETURNING export_attempts`,
		at.UnixMilli(), id, staleBefore.UnixMilli()).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lead %d: %w", id, ErrLeadClaimed)
	}
	if err != nil {
		return 0, fmt.Errorf("claim lead %d: %w", id, err)
	}
	return attempts, nil
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64, at time.Time) error {
	return r.setStatus(ctx,
		`UPDATE leads SET export_status = 'exported', export_error = '', export_claimed_at = NULL, exported_at = ?
		 WHERE id = ?`,
		formatTime(at), id)
}

// MarkExportError records cause. With final set the lead moves to
// ExportFailed and the poll loop stops retrying it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64, cause error, final bool) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	status := ExportError
	if final {
		status = ExportFailed
	}
	return r.setStatus(ctx,
		`UPDATE leads SET export_status = ?, export_error = ?, export_claimed_at = NULL WHERE id = ?`,
		status, msg, id)
}

// RetryFailedExports gives leads that exhausted their attempts a fresh
// start and returns how many were reset.
func (r *SQLiteRepository) RetryFailedExports(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads SET export_status = 'error', export_attempts = 0 WHERE export_status = 'failed'`)
	if err != nil {
		return 0, fmt.Errorf("retry failed exports: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry failed exports: %w", err)
	}
	return n, nil
}

// CountByStatus reports how many leads are in each export state.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT export_status, COUNT(*) FROM leads GROUP BY export_status`)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan lead count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) setStatus(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *SQLiteRepository) queryLeads(ctx context.Context, query string, args ...any) ([]Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner) (*Lead, error) {
	var (
		l           Lead
		submittedAt string
		exportedAt  sql.NullString
	)
	err := s.Scan(&l.ID, &l.Customer.Name, &l.Customer.Email, &l.Customer.Phone,
		&l.Customer.Amount, &l.Customer.PreferredFund, &submittedAt,
		&l.ExportStatus, &l.ExportError, &l.ExportAttempts, &exportedAt)
	if err != nil {
		return nil, err
	}
	if l.Customer.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, err
	}
	if exportedAt.Valid {
		t, err := parseTime(exportedAt.String)
		if err != nil {
			return nil, err
		}
		l.ExportedAt = &t
	}
	return &l, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
