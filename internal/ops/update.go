package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"jobworkflow/internal/db"
)

// UpdateStatusItem is one id/status pair in a bulk update. ID accepts a
// JSON number or a numeric string.
type UpdateStatusItem struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

type UpdateStatusRequest struct {
	Items  []UpdateStatusItem `json:"items"`
	DBPath string             `json:"db_path,omitempty"`
}

// ItemResult reports one batch item's outcome in input order.
type ItemResult struct {
	ID      any    `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type UpdateStatusResult struct {
	UpdatedCount int          `json:"updated_count"`
	FailedCount  int          `json:"failed_count"`
	Results      []ItemResult `json:"results"`
}

// BulkUpdateJobStatus applies a batch of status changes atomically.
// Validation failures, duplicate ids, and missing rows all abort the
// batch before any write; on success every item committed under one
// transaction with one shared timestamp.
func (o *Ops) BulkUpdateJobStatus(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResult, error) {
	if err := checkBatchSize(len(req.Items)); err != nil {
		return nil, err
	}
	res := &UpdateStatusResult{Results: []ItemResult{}}
	if len(req.Items) == 0 {
		return res, nil
	}

	n := len(req.Items)
	ids := make([]int64, n)
	statuses := make([]db.Status, n)
	errs := make([]string, n)
	seen := make(map[string]int, n)
	invalid := false

	for i, item := range req.Items {
		id, err := parseItemID(item.ID)
		if err != nil {
			errs[i] = err.Error()
			invalid = true
			continue
		}
		// String-keyed, so a numeric 7 and a string "7" collide.
		key := strconv.FormatInt(id, 10)
		if first, dup := seen[key]; dup {
			errs[i] = fmt.Sprintf("duplicate id %s (first seen at items[%d])", key, first)
			invalid = true
			continue
		}
		seen[key] = i

		st, err := db.ParseStatus(item.Status)
		if err != nil {
			errs[i] = err.Error()
			invalid = true
			continue
		}
		ids[i] = id
		statuses[i] = st
	}

	if invalid {
		res.Results = fillAborted(req.Items, errs)
		res.FailedCount = n
		return res, nil
	}

	store, err := db.OpenExisting(o.dbPath(req.DBPath))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.PreflightUpdatedAt(ctx); err != nil {
		return nil, err
	}

	existing, err := store.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	missing := false
	for i, id := range ids {
		if !existing[id] {
			errs[i] = fmt.Sprintf("job %d not found", id)
			missing = true
		}
	}
	if missing {
		res.Results = fillAborted(req.Items, errs)
		res.FailedCount = n
		return res, nil
	}

	updates := make([]db.StatusUpdate, n)
	for i := range ids {
		updates[i] = db.StatusUpdate{ID: ids[i], Status: statuses[i]}
	}
	if err := store.UpdateStatuses(ctx, updates, db.FormatTime(o.now())); err != nil {
		return nil, err
	}

	res.Results = make([]ItemResult, n)
	for i, item := range req.Items {
		res.Results[i] = ItemResult{ID: echoID(item.ID), Success: true}
	}
	res.UpdatedCount = n
	slog.Info("bulk status update applied", "count", n)
	return res, nil
}

// fillAborted builds the all-failed results for an aborted batch. Items
// that failed their own checks keep their error; the rest report the
// abort.
func fillAborted(items []UpdateStatusItem, errs []string) []ItemResult {
	out := make([]ItemResult, len(items))
	for i, item := range items {
		msg := errs[i]
		if msg == "" {
			msg = "batch aborted: no updates applied"
		}
		out[i] = ItemResult{ID: echoID(item.ID), Error: msg}
	}
	return out
}
