package db

import (
	"context"

	"jobworkflow/internal/toolerr"
)

// StatusUpdate pairs a job id with its target status for batched writes.
type StatusUpdate struct {
	ID     int64
	Status Status
}

// UpdateStatuses applies every update inside one transaction; all rows
// share the same timestamp. Any row affecting != 1 rows aborts and rolls
// the whole batch back, so partial application is never visible.
func (s *Store) UpdateStatuses(ctx context.Context, updates []StatusUpdate, ts string) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.Writer.BeginTx(ctx, nil)
	if err != nil {
		return toolerr.DB("begin status transaction: %v", err)
	}
	defer tx.Rollback()

	const q = `UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return toolerr.DB("prepare status update: %v", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, string(u.Status), ts, u.ID)
		if err != nil {
			return toolerr.DB("update status for job %d: %v", u.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return toolerr.DB("read update result for job %d: %v", u.ID, err)
		}
		if n != 1 {
			return toolerr.DB("status update for job %d affected %d rows, want 1", u.ID, n)
		}
	}

	if err := tx.Commit(); err != nil {
		return toolerr.DB("commit status transaction: %v", err)
	}
	return nil
}

// FinalizeResumeWritten commits the audit fields for one finalized
// application. attempt_count increments exactly here and nowhere else;
// a prior failure's last_error is cleared.
func (s *Store) FinalizeResumeWritten(ctx context.Context, id int64, pdfPath, runID, ts string) error {
	const q = `
UPDATE jobs SET status = 'resume_written',
    resume_pdf_path = ?, resume_written_at = ?, run_id = ?,
    attempt_count = COALESCE(attempt_count, 0) + 1,
    last_error = NULL, updated_at = ?
WHERE id = ?`
	res, err := s.Writer.ExecContext(ctx, q, pdfPath, ts, runID, ts, id)
	if err != nil {
		return toolerr.DB("finalize job %d: %v", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return toolerr.DB("read finalize result for job %d: %v", id, err)
	}
	if n != 1 {
		return toolerr.DB("finalize for job %d affected %d rows, want 1", id, n)
	}
	return nil
}

// FallbackToReviewed is the compensation write: the DB committed but the
// tracker projection failed, so the row returns to 'reviewed' with the
// failure recorded. attempt_count and the audit fields from the finalize
// stay as they are; the attempt was real.
func (s *Store) FallbackToReviewed(ctx context.Context, id int64, errMsg, ts string) error {
	const q = `UPDATE jobs SET status = 'reviewed', last_error = ?, updated_at = ? WHERE id = ?`
	res, err := s.Writer.ExecContext(ctx, q, errMsg, ts, id)
	if err != nil {
		return toolerr.DB("fallback job %d: %v", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return toolerr.DB("read fallback result for job %d: %v", id, err)
	}
	if n != 1 {
		return toolerr.DB("fallback for job %d affected %d rows, want 1", id, n)
	}
	return nil
}
