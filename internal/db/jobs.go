package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jobworkflow/internal/toolerr"
)

// Status is the database-side job status vocabulary. It is deliberately
// disjoint from the tracker-document statuses ("resume_written" here,
// "Resume Written" there); never unify the two.
type Status string

const (
	StatusNew           Status = "new"
	StatusShortlist     Status = "shortlist"
	StatusReviewed      Status = "reviewed"
	StatusReject        Status = "reject"
	StatusResumeWritten Status = "resume_written"
	StatusApplied       Status = "applied"
	StatusGhosted       Status = "ghosted"
)

// AllStatuses lists every valid database status in display order.
var AllStatuses = []Status{
	StatusNew, StatusShortlist, StatusReviewed, StatusReject,
	StatusResumeWritten, StatusApplied, StatusGhosted,
}

// ParseStatus validates a raw status string. Whitespace is not trimmed:
// a padded value is a caller bug, not a spelling variant.
func ParseStatus(raw string) (Status, error) {
	for _, st := range AllStatuses {
		if raw == string(st) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (allowed: %s)", raw, statusList())
}

func statusList() string {
	parts := make([]string, len(AllStatuses))
	for i, st := range AllStatuses {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}

type Job struct {
	ID              int64
	JobID           string
	Title           string
	Company         string
	Description     string
	URL             string
	Location        string
	Source          string
	Status          Status
	CapturedAt      string
	PayloadJSON     string
	CreatedAt       string
	UpdatedAt       string
	ResumePDFPath   string
	ResumeWrittenAt string
	RunID           string
	AttemptCount    int
	LastError       string
}

const jobColumns = `
    id, COALESCE(job_id,''), COALESCE(title,''), COALESCE(company,''),
    COALESCE(description,''), url, COALESCE(location,''), COALESCE(source,''),
    status, COALESCE(captured_at,''), payload_json, created_at,
    COALESCE(updated_at,''), COALESCE(resume_pdf_path,''),
    COALESCE(resume_written_at,''), COALESCE(run_id,''),
    COALESCE(attempt_count,0), COALESCE(last_error,'')`

func scanJob(row interface{ Scan(...any) error }) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.JobID, &j.Title, &j.Company,
		&j.Description, &j.URL, &j.Location, &j.Source,
		&j.Status, &j.CapturedAt, &j.PayloadJSON, &j.CreatedAt,
		&j.UpdatedAt, &j.ResumePDFPath,
		&j.ResumeWrittenAt, &j.RunID,
		&j.AttemptCount, &j.LastError,
	)
	return j, err
}

// QueryNew returns up to limit rows with status 'new', newest first.
// It over-fetches one row to detect whether more pages remain; the
// returned cursor is non-nil only when hasMore is true.
func (s *Store) QueryNew(ctx context.Context, limit int, cur *Cursor) ([]Job, bool, *Cursor, error) {
	q := `SELECT` + jobColumns + `
FROM jobs WHERE status = 'new'`
	args := []any{}
	if cur != nil {
		q += ` AND (COALESCE(captured_at,'') < ? OR (COALESCE(captured_at,'') = ? AND id < ?))`
		args = append(args, cur.CapturedAt, cur.CapturedAt, cur.ID)
	}
	q += ` ORDER BY COALESCE(captured_at,'') DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.Reader.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, false, nil, toolerr.DB("query new jobs: %v", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, false, nil, toolerr.DB("scan job row: %v", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, false, nil, toolerr.DB("iterate new jobs: %v", err)
	}

	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	var next *Cursor
	if hasMore && len(out) > 0 {
		last := out[len(out)-1]
		next = &Cursor{CapturedAt: last.CapturedAt, ID: last.ID}
	}
	return out, hasMore, next, nil
}

// QueryByStatus returns up to limit rows in the given status, newest
// first, same ordering as QueryNew.
func (s *Store) QueryByStatus(ctx context.Context, status Status, limit int) ([]Job, error) {
	q := `SELECT` + jobColumns + `
FROM jobs WHERE status = ? ORDER BY COALESCE(captured_at,'') DESC, id DESC LIMIT ?`

	rows, err := s.Reader.QueryContext(ctx, q, string(status), limit)
	if err != nil {
		return nil, toolerr.DB("query %s jobs: %v", status, err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, toolerr.DB("scan job row: %v", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, toolerr.DB("iterate %s jobs: %v", status, err)
	}
	return out, nil
}

// GetJob loads one row by primary key.
func (s *Store) GetJob(ctx context.Context, id int64) (Job, error) {
	q := `SELECT` + jobColumns + ` FROM jobs WHERE id = ?`
	j, err := scanJob(s.Reader.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, toolerr.DB("job %d not found", id)
	}
	if err != nil {
		return Job{}, toolerr.DB("get job %d: %v", id, err)
	}
	return j, nil
}

// ExistingIDs reports which of the given ids are present.
func (s *Store) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	if len(ids) == 0 {
		return map[int64]bool{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	q := fmt.Sprintf(`SELECT id FROM jobs WHERE id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := s.Reader.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, toolerr.DB("check job ids: %v", err)
	}
	defer rows.Close()

	out := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, toolerr.DB("scan job id: %v", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, toolerr.DB("iterate job ids: %v", err)
	}
	return out, nil
}

// CountByStatus returns row counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.Reader.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, toolerr.DB("count jobs by status: %v", err)
	}
	defer rows.Close()

	out := make(map[Status]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, toolerr.DB("scan status count: %v", err)
		}
		out[Status(st)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, toolerr.DB("iterate status counts: %v", err)
	}
	return out, nil
}
