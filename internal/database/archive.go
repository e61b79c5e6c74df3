package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/genoreport/internal/model"
)

// FileName is the archive file name inside the archive directory.
const FileName = "genoreport.db"

// ErrReportNotFound is returned when no report matches the requested ID.
var ErrReportNotFound = errors.New("report not found")

// ReportDB stores generated reports in SQLite.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, letting batch runs read the
	// history while a report is being written.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB in the given directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("report archive not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *ReportDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset TEXT NOT NULL,
		kind TEXT NOT NULL,
		method TEXT NOT NULL,
		created_at TEXT NOT NULL,
		n INTEGER NOT NULL,
		mean REAL,
		missing_rate REAL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_dataset ON reports(dataset);
	CREATE INDEX IF NOT EXISTS idx_reports_kind ON reports(kind, method);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a report and sets its ID.
func (rdb *ReportDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO reports (dataset, kind, method, created_at, n, mean, missing_rate, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		report.Dataset,
		report.Kind.String(),
		string(report.Method),
		report.CreatedAt.UTC().Format(timestampLayout),
		report.Summary.N,
		report.Summary.Mean,
		report.MissingRate,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read report id: %w", err)
	}
	report.ID = id
	return id, nil
}

// GetReport retrieves a report by its database ID.
// ErrReportNotFound is returned when the ID does not exist.
func (rdb *ReportDB) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// LatestReport returns the most recent report of a dataset for the kind
// and method, or nil when there is none.
func (rdb *ReportDB) LatestReport(ctx context.Context, dataset string, kind model.Kind, method model.Method) (*model.Report, error) {
	var id int64
	err := rdb.db.QueryRowContext(ctx, `
	SELECT id FROM reports
	WHERE dataset = ? AND kind = ? AND method = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`, dataset, kind.String(), string(method)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return rdb.GetReport(ctx, id)
}

// ReportMetadata contains summary information about an archived report.
// This is used for listing the history without loading the full report.
type ReportMetadata struct {
	ID          int64
	Dataset     string
	Kind        string
	Method      string
	CreatedAt   time.Time
	N           int
	Mean        float64
	MissingRate float64
}

// Filter narrows ListReports. Zero fields match everything.
type Filter struct {
	Dataset string
	Kind    string
	Method  string

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// ListReports returns report metadata, newest first.
func (rdb *ReportDB) ListReports(ctx context.Context, f Filter) ([]ReportMetadata, error) {
	query := `
	SELECT id, dataset, kind, method, created_at, n, mean, missing_rate
	FROM reports
	WHERE 1=1
	`
	args := make([]any, 0, 4)

	if f.Dataset != "" {
		query += " AND dataset = ?"
		args = append(args, f.Dataset)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Method != "" {
		query += " AND method = ?"
		args = append(args, f.Method)
	}

	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var mean, missing sql.NullFloat64

		if err := rows.Scan(&meta.ID, &meta.Dataset, &meta.Kind, &meta.Method,
			&timestamp, &meta.N, &mean, &missing); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}

		meta.CreatedAt = parseTimestamp(timestamp)
		meta.Mean = mean.Float64
		meta.MissingRate = missing.Float64
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListDatasets returns the names of all archived datasets.
func (rdb *ReportDB) ListDatasets(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT dataset FROM reports ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, name)
	}

	return datasets, rows.Err()
}

// DeleteReport removes a report by ID.
// ErrReportNotFound is returned when the ID does not exist.
func (rdb *ReportDB) DeleteReport(ctx context.Context, id int64) error {
	result, err := rdb.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrReportNotFound, id)
	}
	return nil
}

// timestampLayout is the fixed-width UTC layout of created_at, so that text
// order equals time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats contains the timestamp formats the archive may hold.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
