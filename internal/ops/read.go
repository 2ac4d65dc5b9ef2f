package ops

import (
	"context"

	"jobworkflow/internal/db"
)

// ReadNewRequest pages through jobs still in status new. Cursor is a
// pointer so an absent cursor (first page) and an empty string (always
// invalid) stay distinguishable.
type ReadNewRequest struct {
	Limit  int     `json:"limit,omitempty"`
	Cursor *string `json:"cursor,omitempty"`
	DBPath string  `json:"db_path,omitempty"`
}

// JobView is the wire shape of one queue row.
type JobView struct {
	ID          int64  `json:"id"`
	JobID       string `json:"job_id,omitempty"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
	Status      string `json:"status"`
	CapturedAt  string `json:"captured_at,omitempty"`
}

// ReadNewResult is one page of the new-jobs queue.
type ReadNewResult struct {
	Jobs       []JobView `json:"jobs"`
	Count      int       `json:"count"`
	HasMore    bool      `json:"has_more"`
	NextCursor *string   `json:"next_cursor"`
}

func viewOf(j db.Job) JobView {
	return JobView{
		ID:          j.ID,
		JobID:       j.JobID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Description: j.Description,
		URL:         j.URL,
		Source:      j.Source,
		Status:      string(j.Status),
		CapturedAt:  j.CapturedAt,
	}
}

// BulkReadNewJobs returns up to limit new jobs, newest capture first,
// with a keyset cursor for the next page. Pages are disjoint and replay
// deterministically for unchanged data.
func (o *Ops) BulkReadNewJobs(ctx context.Context, req ReadNewRequest) (*ReadNewResult, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	if err := checkRange("limit", limit, 1, 1000); err != nil {
		return nil, err
	}

	var cur *db.Cursor
	if req.Cursor != nil {
		decoded, err := db.DecodeCursor(*req.Cursor)
		if err != nil {
			return nil, err
		}
		cur = decoded
	}

	store, err := db.OpenExisting(o.dbPath(req.DBPath))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	jobs, hasMore, next, err := store.QueryNew(ctx, limit, cur)
	if err != nil {
		return nil, err
	}

	res := &ReadNewResult{
		Jobs:    make([]JobView, 0, len(jobs)),
		Count:   len(jobs),
		HasMore: hasMore,
	}
	for _, j := range jobs {
		res.Jobs = append(res.Jobs, viewOf(j))
	}
	if next != nil {
		token := next.Encode()
		res.NextCursor = &token
	}
	return res, nil
}
