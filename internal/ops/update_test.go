package ops

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"jobworkflow/internal/db"
	"jobworkflow/internal/toolerr"
)

func TestBulkUpdateJobStatusAppliesBatch(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	seedJobs(t, o, db.StatusNew, 3)

	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{
		Items: []UpdateStatusItem{
			{ID: json.Number("1"), Status: "shortlist"},
			{ID: json.Number("2"), Status: "reject"},
			{ID: json.Number("3"), Status: "shortlist"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 3 || res.FailedCount != 0 {
		t.Fatalf("counts = %d/%d, want 3/0", res.UpdatedCount, res.FailedCount)
	}
	for i, r := range res.Results {
		if !r.Success {
			t.Fatalf("results[%d] = %+v, want success", i, r)
		}
	}
	if res.Results[0].ID != int64(1) {
		t.Fatalf("id echo = %#v, want int64", res.Results[0].ID)
	}

	counts := countStatuses(t, o)
	if counts[db.StatusShortlist] != 2 || counts[db.StatusReject] != 1 || counts[db.StatusNew] != 0 {
		t.Fatalf("db statuses = %v", counts)
	}

	// Every row in the batch shares one timestamp.
	if a, b := getJob(t, o, 1).UpdatedAt, getJob(t, o, 3).UpdatedAt; a != b {
		t.Fatalf("updated_at differs within batch: %q vs %q", a, b)
	}
}

func TestBulkUpdateJobStatusAtomicRejection(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	seedJobs(t, o, db.StatusNew, 3)

	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{
		Items: []UpdateStatusItem{
			{ID: json.Number("1"), Status: "shortlist"},
			{ID: json.Number("2"), Status: "bogus"},
			{ID: json.Number("3"), Status: "reject"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 0 || res.FailedCount != 3 {
		t.Fatalf("counts = %d/%d, want 0/3", res.UpdatedCount, res.FailedCount)
	}
	if !strings.Contains(res.Results[1].Error, "invalid status") {
		t.Fatalf("results[1].Error = %q, want the status complaint", res.Results[1].Error)
	}
	if res.Results[0].Error != "batch aborted: no updates applied" {
		t.Fatalf("results[0].Error = %q, want the abort marker", res.Results[0].Error)
	}

	if counts := countStatuses(t, o); counts[db.StatusNew] != 3 {
		t.Fatalf("db statuses = %v, want all rows untouched", counts)
	}
}

func TestBulkUpdateJobStatusMissingIDAborts(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	seedJobs(t, o, db.StatusNew, 2)

	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{
		Items: []UpdateStatusItem{
			{ID: json.Number("1"), Status: "shortlist"},
			{ID: json.Number("99"), Status: "shortlist"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 0 {
		t.Fatalf("updated = %d, want 0", res.UpdatedCount)
	}
	if !strings.Contains(res.Results[1].Error, "job 99 not found") {
		t.Fatalf("results[1].Error = %q", res.Results[1].Error)
	}
	if counts := countStatuses(t, o); counts[db.StatusNew] != 2 {
		t.Fatalf("db statuses = %v, want all rows untouched", counts)
	}
}

func TestBulkUpdateJobStatusDuplicateIDs(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	seedJobs(t, o, db.StatusNew, 1)

	// A numeric 1 and a string "1" are the same id.
	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{
		Items: []UpdateStatusItem{
			{ID: json.Number("1"), Status: "shortlist"},
			{ID: json.Number("1"), Status: "reject"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 0 {
		t.Fatalf("updated = %d, want 0", res.UpdatedCount)
	}
	if !strings.Contains(res.Results[1].Error, "duplicate id 1") {
		t.Fatalf("results[1].Error = %q", res.Results[1].Error)
	}
	if counts := countStatuses(t, o); counts[db.StatusNew] != 1 {
		t.Fatalf("db statuses = %v, want the row untouched", counts)
	}
}

func TestBulkUpdateJobStatusWhitespaceStatusRejected(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	seedJobs(t, o, db.StatusNew, 1)

	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{
		Items: []UpdateStatusItem{{ID: json.Number("1"), Status: " shortlist"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 0 || res.Results[0].Success {
		t.Fatalf("padded status accepted: %+v", res.Results[0])
	}
}

func TestBulkUpdateJobStatusEmptyBatch(t *testing.T) {
	t.Parallel()

	// No database exists; an empty batch never needs one.
	o := newTestOps(t, nil)
	res, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.UpdatedCount != 0 || res.FailedCount != 0 || len(res.Results) != 0 {
		t.Fatalf("result = %+v, want the empty shape", res)
	}
	if res.Results == nil {
		t.Fatalf("results must encode as [], not null")
	}
}

func TestBulkUpdateJobStatusBatchTooLarge(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	items := make([]UpdateStatusItem, maxBatchItems+1)
	for i := range items {
		items[i] = UpdateStatusItem{ID: json.Number("1"), Status: "shortlist"}
	}
	_, err := o.BulkUpdateJobStatus(context.Background(), UpdateStatusRequest{Items: items})
	if toolerr.CodeOf(err) != toolerr.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}
