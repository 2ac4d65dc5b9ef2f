package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jobworkflow/internal/toolerr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id            TEXT,
    title             TEXT,
    company           TEXT,
    description       TEXT,
    url               TEXT NOT NULL UNIQUE,
    location          TEXT,
    source            TEXT,
    status            TEXT NOT NULL DEFAULT 'new'
        CHECK(status IN ('new','shortlist','reviewed','reject','resume_written','applied','ghosted')),
    captured_at       TEXT,
    payload_json      TEXT NOT NULL,
    created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    updated_at        TEXT,
    resume_pdf_path   TEXT,
    resume_written_at TEXT,
    run_id            TEXT,
    attempt_count     INTEGER DEFAULT 0,
    last_error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

func (s *Store) createSchema() error {
	if _, err := s.Writer.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// jobsTableSQL returns the lowercased CREATE statement for the jobs
// table, or "" when the table does not exist.
func (s *Store) jobsTableSQL(ctx context.Context) (string, error) {
	var sqlText string
	err := s.Reader.QueryRowContext(ctx,
		`SELECT COALESCE(sql,'') FROM sqlite_master WHERE type='table' AND name='jobs'`).Scan(&sqlText)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load jobs table SQL: %w", err)
	}
	return strings.ToLower(sqlText), nil
}

// PreflightUpdatedAt verifies the jobs table carries the updated_at
// column required by bulk status updates.
func (s *Store) PreflightUpdatedAt(ctx context.Context) error {
	return s.preflightColumns(ctx, []string{"updated_at"})
}

// PreflightAudit verifies the full audit column set required by the
// finalize writers.
func (s *Store) PreflightAudit(ctx context.Context) error {
	return s.preflightColumns(ctx, []string{
		"updated_at", "resume_pdf_path", "resume_written_at", "run_id", "attempt_count", "last_error",
	})
}

func (s *Store) preflightColumns(ctx context.Context, cols []string) error {
	sqlText, err := s.jobsTableSQL(ctx)
	if err != nil {
		return toolerr.DB("schema preflight: %v", err)
	}
	if sqlText == "" {
		return toolerr.DB("jobs table missing; migration required")
	}
	var missing []string
	for _, col := range cols {
		if !strings.Contains(sqlText, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return toolerr.DB("jobs table missing columns %s; migration required", strings.Join(missing, ", "))
	}
	return nil
}
