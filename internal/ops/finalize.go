package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"jobworkflow/internal/db"
	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/tracker"
)

// FinalizeItem commits one tailored application. ResumePDFPath overrides
// the path derived from the tracker's resume_path frontmatter.
type FinalizeItem struct {
	ID            json.Number `json:"id"`
	TrackerPath   string      `json:"tracker_path"`
	ResumePDFPath string      `json:"resume_pdf_path,omitempty"`
}

type FinalizeRequest struct {
	Items  []FinalizeItem `json:"items"`
	RunID  string         `json:"run_id,omitempty"`
	DryRun bool           `json:"dry_run,omitempty"`
	DBPath string         `json:"db_path,omitempty"`
}

type FinalizeItemResult struct {
	ID            any    `json:"id"`
	TrackerPath   string `json:"tracker_path,omitempty"`
	ResumePDFPath string `json:"resume_pdf_path,omitempty"`
	Action        string `json:"action"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type FinalizeResult struct {
	RunID          string               `json:"run_id"`
	FinalizedCount int                  `json:"finalized_count"`
	FailedCount    int                  `json:"failed_count"`
	DryRun         bool                 `json:"dry_run"`
	Results        []FinalizeItemResult `json:"results"`
}

// FinalizeResumeBatch durably commits tailored applications. Per item
// the database write lands first, then the tracker projection; when the
// tracker write fails after the commit, the row is compensated back to
// reviewed with the failure recorded in last_error. Items are isolated,
// processed in input order, and share one run id and one timestamp.
func (o *Ops) FinalizeResumeBatch(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	if err := checkBatchSize(len(req.Items)); err != nil {
		return nil, err
	}

	res := &FinalizeResult{RunID: req.RunID, DryRun: req.DryRun, Results: []FinalizeItemResult{}}
	if res.RunID == "" {
		res.RunID = newRunID("run", o.now())
	}
	if len(req.Items) == 0 {
		return res, nil
	}

	store, err := db.OpenExisting(o.dbPath(req.DBPath))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.PreflightAudit(ctx); err != nil {
		return nil, err
	}

	ts := db.FormatTime(o.now())
	seen := make(map[string]int, len(req.Items))

	for i, item := range req.Items {
		r := o.finalizeItem(ctx, store, item, i, seen, res.RunID, ts, req.DryRun)
		if r.Success {
			res.FinalizedCount++
		} else {
			res.FailedCount++
		}
		res.Results = append(res.Results, r)
	}

	slog.Info("finalize batch done", "run_id", res.RunID,
		"finalized", res.FinalizedCount, "failed", res.FailedCount, "dry_run", req.DryRun)
	return res, nil
}

func (o *Ops) finalizeItem(ctx context.Context, store *db.Store, item FinalizeItem, index int, seen map[string]int, runID, ts string, dryRun bool) FinalizeItemResult {
	r := FinalizeItemResult{ID: echoID(item.ID), TrackerPath: item.TrackerPath}
	fail := func(err error) FinalizeItemResult {
		r.Action = "failed"
		if dryRun {
			r.Action = "would_fail"
		}
		r.Error = itemError(err)
		return r
	}

	id, err := parseItemID(item.ID)
	if err != nil {
		return fail(toolerr.Validation("%v", err))
	}
	key := strconv.FormatInt(id, 10)
	if first, dup := seen[key]; dup {
		return fail(toolerr.Validation("duplicate id %s (first seen at items[%d])", key, first))
	}
	seen[key] = index

	if strings.TrimSpace(item.TrackerPath) == "" {
		return fail(toolerr.Validation("tracker_path is required"))
	}
	path := o.resolve(item.TrackerPath)
	r.TrackerPath = path

	doc, err := tracker.ParseFile(path)
	if err != nil {
		return fail(err)
	}

	pdfPath := item.ResumePDFPath
	if pdfPath != "" {
		pdfPath = o.resolve(pdfPath)
	} else if p, ok := doc.ResumePDFPath(); ok {
		pdfPath = o.resolve(p)
	} else {
		return fail(toolerr.Validation("no resume_pdf_path given and tracker has no resume_path"))
	}
	r.ResumePDFPath = pdfPath

	if err := checkResumeArtifacts(pdfPath); err != nil {
		return fail(err)
	}

	if dryRun {
		r.Action = "would_finalize"
		r.Success = true
		return r
	}

	if err := store.FinalizeResumeWritten(ctx, id, pdfPath, runID, ts); err != nil {
		return fail(err)
	}

	// DB committed; project the status into the tracker. On failure the
	// row falls back to reviewed so store and projection stay coherent.
	if err := tracker.SetStatusFile(path, tracker.StatusResumeWritten); err != nil {
		msg := "Tracker sync failed: " + toolerr.Sanitize(err.Error())
		slog.Warn("tracker sync failed after DB commit, compensating",
			"id", id, "path", path, "error", err)
		if compErr := store.FallbackToReviewed(ctx, id, msg, ts); compErr != nil {
			slog.Error("compensation failed", "id", id, "error", compErr)
			msg += "; compensation failed: " + toolerr.Sanitize(compErr.Error())
		}
		r.Action = "failed"
		r.Error = msg
		return r
	}

	r.Action = "finalized"
	r.Success = true
	return r
}
