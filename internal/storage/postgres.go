/**
 * PostgreSQL run ledger for worker mode
 *
 * Records one row per processing run: status transitions, dispatch
 * strategy, page counts, and reconciliation diagnostics as JSONB. The
 * ledger is append/upsert only; the pipeline never reads it on the hot
 * path.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Run status values
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunLedger handles run persistence
type RunLedger struct {
	db *sql.DB
}

// RunRecord is one ledger entry
type RunRecord struct {
	RunID          string
	Status         string
	InputPath      string
	OutputPath     string
	Strategy       string
	SourcePages    int
	PagesProcessed int

	// Reconciliation diagnostics; stored as JSONB.
	Duplicates []int
	Missing    []int

	ErrorCode    string
	ErrorMessage string
	DurationMs   int64
}

// NewRunLedger connects to the ledger database
func NewRunLedger(databaseURL string) (*RunLedger, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &RunLedger{db: db}, nil
}

// RecordStatus upserts the ledger row for one run. The worker may record a
// run before any other writer created it.
func (l *RunLedger) RecordStatus(ctx context.Context, record *RunRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("run ID is required")
	}

	if record.Status == "" {
		return fmt.Errorf("status is required")
	}

	diagnostics, err := json.Marshal(map[string]interface{}{
		"duplicates": record.Duplicates,
		"missing":    record.Missing,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	query := `
		INSERT INTO readvision.processing_runs (
			id, status, input_path, output_path, strategy,
			source_pages, pages_processed, diagnostics,
			error_code, error_message, duration_ms,
			created_at, updated_at
		) VALUES (
			$1::uuid, $2, $3, $4, NULLIF($5, ''),
			NULLIF($6, 0), NULLIF($7, 0), $8::jsonb,
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, 0),
			NOW(), NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			strategy = COALESCE(EXCLUDED.strategy, readvision.processing_runs.strategy),
			source_pages = COALESCE(EXCLUDED.source_pages, readvision.processing_runs.source_pages),
			pages_processed = COALESCE(EXCLUDED.pages_processed, readvision.processing_runs.pages_processed),
			diagnostics = COALESCE(EXCLUDED.diagnostics, readvision.processing_runs.diagnostics),
			error_code = NULLIF(EXCLUDED.error_code, ''),
			error_message = NULLIF(EXCLUDED.error_message, ''),
			duration_ms = COALESCE(EXCLUDED.duration_ms, readvision.processing_runs.duration_ms),
			updated_at = NOW()
		RETURNING id
	`

	var returnedID string
	err = l.db.QueryRowContext(
		ctx,
		query,
		record.RunID,
		record.Status,
		record.InputPath,
		record.OutputPath,
		record.Strategy,
		record.SourcePages,
		record.PagesProcessed,
		diagnostics,
		record.ErrorCode,
		record.ErrorMessage,
		record.DurationMs,
	).Scan(&returnedID)

	if err != nil {
		return fmt.Errorf("failed to record run status (run=%s, status=%s): %w", record.RunID, record.Status, err)
	}

	return nil
}

// GetRun retrieves one ledger row
func (l *RunLedger) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	query := `
		SELECT id, status, input_path, output_path,
			COALESCE(strategy, ''), COALESCE(source_pages, 0),
			COALESCE(pages_processed, 0), COALESCE(diagnostics, '{}'::jsonb),
			COALESCE(error_code, ''), COALESCE(error_message, ''),
			COALESCE(duration_ms, 0)
		FROM readvision.processing_runs
		WHERE id = $1::uuid
	`

	record := &RunRecord{}
	var diagnostics []byte

	err := l.db.QueryRowContext(ctx, query, runID).Scan(
		&record.RunID,
		&record.Status,
		&record.InputPath,
		&record.OutputPath,
		&record.Strategy,
		&record.SourcePages,
		&record.PagesProcessed,
		&diagnostics,
		&record.ErrorCode,
		&record.ErrorMessage,
		&record.DurationMs,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var parsed struct {
		Duplicates []int `json:"duplicates"`
		Missing    []int `json:"missing"`
	}
	if err := json.Unmarshal(diagnostics, &parsed); err == nil {
		record.Duplicates = parsed.Duplicates
		record.Missing = parsed.Missing
	}

	return record, nil
}

// Ping checks database connectivity
func (l *RunLedger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the database connection
func (l *RunLedger) Close() error {
	return l.db.Close()
}
