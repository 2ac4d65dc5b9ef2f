package db

import (
	"context"

	"jobworkflow/internal/toolerr"
)

// CleanedRecord is a normalized posting ready for insertion. URL is the
// dedupe key; everything else is carried as-is.
type CleanedRecord struct {
	JobID       string
	Title       string
	Company     string
	Description string
	URL         string
	Location    string
	Source      string
	CapturedAt  string
	PayloadJSON string
}

// InsertCleaned inserts records with the given initial status inside one
// transaction. Duplicate URLs are ignored without touching the live row;
// the split between inserted and duplicates is derived from per-row
// affected counts.
func (s *Store) InsertCleaned(ctx context.Context, records []CleanedRecord, status Status, ts string) (inserted, duplicates int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	tx, err := s.Writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, toolerr.DB("begin ingest transaction: %v", err)
	}
	defer tx.Rollback()

	const q = `
INSERT OR IGNORE INTO jobs (
    job_id, title, company, description, url, location, source,
    status, captured_at, payload_json, created_at, updated_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, 0, toolerr.DB("prepare ingest insert: %v", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		res, err := stmt.ExecContext(ctx,
			nullable(rec.JobID), nullable(rec.Title), nullable(rec.Company),
			nullable(rec.Description), rec.URL, nullable(rec.Location), nullable(rec.Source),
			string(status), nullable(rec.CapturedAt), rec.PayloadJSON, ts, ts,
		)
		if err != nil {
			return 0, 0, toolerr.DB("insert job: %v", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, toolerr.DB("read insert result: %v", err)
		}
		if n == 1 {
			inserted++
		} else {
			duplicates++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, toolerr.DB("commit ingest transaction: %v", err)
	}
	return inserted, duplicates, nil
}

// nullable stores empty strings as NULL so reads can COALESCE uniformly.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
