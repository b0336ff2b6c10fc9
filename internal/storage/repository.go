package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finsight/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Export statuses for stored reports.
const (
	ExportStatusPending  = "pending"
	ExportStatusExported = "exported"
	ExportStatusError    = "error"
)

// Statement is a stored bank statement with its parsed transactions.
type Statement struct {
	ID               string
	SourceName       string
	TransactionCount int
	UploadedAt       time.Time
	Transactions     []core.Transaction
}

// StoredReport is a generated report persisted for later retrieval and export.
type StoredReport struct {
	ID           string
	StatementID  string
	Report       core.Report
	Version      int64
	ExportStatus string
	GeneratedAt  time.Time
}

// PendingExportReport carries the minimal data needed for export queue messages.
type PendingExportReport struct {
	ID          string
	Version     int64
	GeneratedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
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

// Ping verifies the database connection is still usable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveStatement persists a statement and its transactions atomically.
func (r *SQLiteRepository) SaveStatement(ctx context.Context, st Statement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO statements (id, source_name, transaction_count, uploaded_at) VALUES (?, ?, ?, ?)`,
		st.ID, st.SourceName, len(st.Transactions), st.UploadedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (statement_id, booked_on, reference, withdraw, deposit, category) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range st.Transactions {
		if _, err := stmt.ExecContext(ctx,
			st.ID, t.Date.Format("2006-01-02"), t.Reference, t.Withdraw, t.Deposit, t.Category); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement saved to SQLite",
		"id", st.ID,
		"transactions", len(st.Transactions))

	return nil
}

// GetStatement retrieves a statement and its transactions by ID.
func (r *SQLiteRepository) GetStatement(ctx context.Context, id string) (*Statement, error) {
	st := Statement{ID: id}

	err := r.db.QueryRowContext(ctx,
		`SELECT source_name, transaction_count, uploaded_at FROM statements WHERE id = ?`, id).
		Scan(&st.SourceName, &st.TransactionCount, &st.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select statement: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT booked_on, reference, withdraw, deposit, category FROM transactions WHERE statement_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookedOn string
		var t core.Transaction
		if err := rows.Scan(&bookedOn, &t.Reference, &t.Withdraw, &t.Deposit, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := core.ParseDate(bookedOn)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		t.Date = d
		st.Transactions = append(st.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return &st, nil
}

// ListStatements returns statement headers, most recent first.
func (r *SQLiteRepository) ListStatements(ctx context.Context, limit int) ([]Statement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_name, transaction_count, uploaded_at FROM statements ORDER BY uploaded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select statements: %w", err)
	}
	defer rows.Close()

	var statements []Statement
	for rows.Next() {
		var st Statement
		if err := rows.Scan(&st.ID, &st.SourceName, &st.TransactionCount, &st.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}

	return statements, nil
}

// SaveReport persists a generated report with its JSON payload.
func (r *SQLiteRepository) SaveReport(ctx context.Context, id, statementID string, report core.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var stID any
	if statementID != "" {
		stID = statementID
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reports (id, statement_id, payload, generated_at) VALUES (?, ?, ?, ?)`,
		id, stID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	slog.InfoContext(ctx, "Report saved to SQLite", "id", id, "statement_id", statementID)
	return nil
}

// GetReport retrieves a stored report by ID.
func (r *SQLiteRepository) GetReport(ctx context.Context, id string) (*StoredReport, error) {
	var sr StoredReport
	var statementID sql.NullString
	var payload string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, statement_id, payload, version, export_status, generated_at FROM reports WHERE id = ?`, id).
		Scan(&sr.ID, &statementID, &payload, &sr.Version, &sr.ExportStatus, &sr.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}

	sr.StatementID = statementID.String
	if err := json.Unmarshal([]byte(payload), &sr.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report payload: %w", err)
	}

	return &sr, nil
}

// GetPendingExportReports returns reports that still need to be exported.
func (r *SQLiteRepository) GetPendingExportReports(ctx context.Context, limit int) ([]PendingExportReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, generated_at FROM reports WHERE export_status = ? ORDER BY generated_at LIMIT ?`,
		ExportStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending export reports: %w", err)
	}
	defer rows.Close()

	var pending []PendingExportReport
	for rows.Next() {
		var p PendingExportReport
		if err := rows.Scan(&p.ID, &p.Version, &p.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan pending export report: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending export reports: %w", err)
	}

	return pending, nil
}

// MarkExported marks a report as successfully exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET export_status = ?, exported_at = ?, export_attempts = export_attempts + 1 WHERE id = ?`,
		ExportStatusExported, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark report exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Report marked as exported", "id", id)
	return nil
}

// MarkExportError marks a report as having export errors.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reports SET export_status = ?, export_attempts = export_attempts + 1 WHERE id = ?`,
		ExportStatusError, id)
	if err != nil {
		return fmt.Errorf("mark report export error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.WarnContext(ctx, "Report marked with export error", "id", id)
	return nil
}

// ReportCount returns the total number of stored reports.
func (r *SQLiteRepository) ReportCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
