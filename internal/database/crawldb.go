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

	"github.com/govcrawl/govcrawl/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl runs. It manages
// connection pooling and provides methods for saving and querying runs.
//
// Design decision: We use a single database file for all runs rather
// than one file per run. This keeps run history queries simple and
// makes backup a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "govcrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		scope TEXT NOT NULL,
		seeds TEXT NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_scope ON runs(scope);

	-- Visits store the terminal state of every URL a run touched
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		error_kind TEXT,
		error_detail TEXT,
		referrer TEXT,
		artifact_path TEXT,
		updated_at DATETIME,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_visits_run ON visits(run_id);
	CREATE INDEX IF NOT EXISTS idx_visits_status ON visits(status);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed crawl summary and all of its visit
// records in one transaction, returning the new run ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, summary *model.CrawlSummary) (int64, error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	seedsJSON, err := json.Marshal(summary.Seeds)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize seeds: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, scope, seeds, cancelled, summary_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.Scope,
		string(seedsJSON),
		summary.Cancelled,
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO visits (run_id, url, status, attempts, error_kind, error_detail, referrer, artifact_path, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range summary.Records {
		if _, err := stmt.ExecContext(ctx,
			runID,
			rec.URL,
			rec.Status.String(),
			rec.Attempts,
			rec.ErrorKind,
			rec.ErrorDetail,
			rec.Referrer,
			rec.ArtifactPath,
			rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("failed to insert visit for %s: %w", rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing run history without loading the full summary.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Scope is the run's scope rule.
	Scope string

	// Seeds are the starting URLs.
	Seeds []string

	// Cancelled is true when the run was interrupted.
	Cancelled bool

	// Total and Written count the run's URLs and artifacts.
	Total   int
	Written int
	Failed  int
}

// ListRuns returns metadata for all stored runs, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT r.id, r.started_at, r.finished_at, r.scope, r.seeds, r.cancelled,
		COUNT(v.id),
		COALESCE(SUM(CASE WHEN v.status = 'written' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN v.status IN ('fetch_failed', 'extract_failed', 'write_failed') THEN 1 ELSE 0 END), 0)
	FROM runs r
	LEFT JOIN visits v ON v.run_id = r.id
	GROUP BY r.id
	ORDER BY r.started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started, finished, seedsJSON string
		if err := rows.Scan(&meta.ID, &started, &finished, &meta.Scope, &seedsJSON,
			&meta.Cancelled, &meta.Total, &meta.Written, &meta.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		if seedsJSON != "" {
			if err := json.Unmarshal([]byte(seedsJSON), &meta.Seeds); err != nil {
				meta.Seeds = nil
			}
		}
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRunSummary retrieves the full stored summary of a run by ID.
// It returns nil with no error when the run does not exist.
func (cdb *CrawlDB) GetRunSummary(ctx context.Context, runID int64) (*model.CrawlSummary, error) {
	var summaryJSON string
	err := cdb.db.QueryRowContext(ctx,
		`SELECT summary_json FROM runs WHERE id = ?`, runID,
	).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}

	var summary model.CrawlSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse run %d summary: %w", runID, err)
	}
	return &summary, nil
}

// GetRunVisits retrieves all visit records of a run, ordered by URL.
func (cdb *CrawlDB) GetRunVisits(ctx context.Context, runID int64) ([]*model.VisitRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, status, attempts, error_kind, error_detail, referrer, artifact_path, updated_at
	FROM visits
	WHERE run_id = ?
	ORDER BY url
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visits for run %d: %w", runID, err)
	}
	defer rows.Close()

	var records []*model.VisitRecord
	for rows.Next() {
		var rec model.VisitRecord
		var status, updated string
		var errorKind, errorDetail, referrer, artifactPath sql.NullString
		if err := rows.Scan(&rec.URL, &status, &rec.Attempts,
			&errorKind, &errorDetail, &referrer, &artifactPath, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		rec.Status = parseStatus(status)
		rec.ErrorKind = errorKind.String
		rec.ErrorDetail = errorDetail.String
		rec.Referrer = referrer.String
		rec.ArtifactPath = artifactPath.String
		rec.UpdatedAt = parseTimestamp(updated)
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// DeleteRun removes a run and its visits.
func (cdb *CrawlDB) DeleteRun(ctx context.Context, runID int64) error {
	// The schema declares ON DELETE CASCADE but SQLite only honors it
	// with foreign keys enabled, so delete visits explicitly.
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visits WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete visits: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}

// parseStatus maps a stored status name back to its Status value.
func parseStatus(name string) model.Status {
	for s := model.StatusPending; s <= model.StatusSkipped; s++ {
		if s.String() == name {
			return s
		}
	}
	return model.StatusPending
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
