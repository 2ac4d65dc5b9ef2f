package ops

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobworkflow/internal/atomicfile"
	"jobworkflow/internal/db"
	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/tracker"
	"jobworkflow/internal/workspace"
)

type InitTrackersRequest struct {
	Limit           int    `json:"limit,omitempty"`
	TrackersDir     string `json:"trackers_dir,omitempty"`
	ApplicationsDir string `json:"applications_dir,omitempty"`
	Force           bool   `json:"force,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
	DBPath          string `json:"db_path,omitempty"`
}

// TrackerInitItem reports one shortlisted row's projection outcome.
type TrackerInitItem struct {
	ID          int64  `json:"id"`
	Company     string `json:"company,omitempty"`
	Action      string `json:"action"`
	TrackerPath string `json:"tracker_path,omitempty"`
	Error       string `json:"error,omitempty"`
}

type InitTrackersResult struct {
	CreatedCount     int               `json:"created_count"`
	SkippedCount     int               `json:"skipped_count"`
	OverwrittenCount int               `json:"overwritten_count"`
	FailedCount      int               `json:"failed_count"`
	DryRun           bool              `json:"dry_run"`
	Results          []TrackerInitItem `json:"results"`
}

// InitializeShortlistTrackers projects shortlisted rows into tracker
// markdown files and plans their application workspaces. The database is
// only read; existing trackers are skipped unless force, and a legacy
// tracker whose reference_link matches the job url counts as existing
// even under a different filename. A failed row never stops the batch.
func (o *Ops) InitializeShortlistTrackers(ctx context.Context, req InitTrackersRequest) (*InitTrackersResult, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	if err := checkRange("limit", limit, 1, 1000); err != nil {
		return nil, err
	}

	trackersDir := o.cfg.TrackersDir
	if req.TrackersDir != "" {
		trackersDir = o.resolve(req.TrackersDir)
	}
	appsDir := o.cfg.ApplicationsDir
	if req.ApplicationsDir != "" {
		appsDir = o.resolve(req.ApplicationsDir)
	}

	store, err := db.OpenExisting(o.dbPath(req.DBPath))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	rows, err := store.QueryByStatus(ctx, db.StatusShortlist, limit)
	if err != nil {
		return nil, err
	}

	legacy := legacyTrackerIndex(trackersDir)
	now := o.now()
	today := now.UTC().Format("2006-01-02")

	res := &InitTrackersResult{DryRun: req.DryRun, Results: make([]TrackerInitItem, 0, len(rows))}
	for _, row := range rows {
		item := o.initTracker(row, trackersDir, appsDir, today, now, legacy, req.Force, req.DryRun)
		switch item.Action {
		case "created":
			res.CreatedCount++
		case "skipped_exists":
			res.SkippedCount++
		case "overwritten":
			res.OverwrittenCount++
		default:
			res.FailedCount++
		}
		res.Results = append(res.Results, item)
	}

	slog.Info("tracker initialization done", "created", res.CreatedCount,
		"skipped", res.SkippedCount, "overwritten", res.OverwrittenCount,
		"failed", res.FailedCount, "dry_run", req.DryRun)
	return res, nil
}

func (o *Ops) initTracker(row db.Job, trackersDir, appsDir, today string, now time.Time, legacy map[string]string, force, dryRun bool) TrackerInitItem {
	item := TrackerInitItem{ID: row.ID, Company: row.Company}

	day := capturedDay(row, now)
	slug := workspace.ResolveSlug("", row.Company, row.Title, row.ID)
	target := filepath.Join(trackersDir, tracker.Filename(day, workspace.Normalize(row.Company), row.ID))

	exists := fileExists(target)
	if p, ok := legacy[row.URL]; ok && !exists {
		target = p
		exists = true
	}
	item.TrackerPath = target

	switch {
	case !exists:
		item.Action = "created"
	case force:
		item.Action = "overwritten"
	default:
		item.Action = "skipped_exists"
		return item
	}

	ws := workspace.New(appsDir, slug)
	fields := tracker.Fields{
		JobDBID:         row.ID,
		JobID:           row.JobID,
		Company:         row.Company,
		Position:        row.Title,
		Status:          tracker.StatusReviewed,
		ApplicationDate: today,
		ReferenceLink:   row.URL,
		ResumePath:      "[[" + ws.ResumePDF() + "]]",
		CoverLetterPath: "[[" + ws.CoverLetterPDF() + "]]",
	}
	content, err := tracker.Render(fields, row.Description)
	if err != nil {
		item.Action = "failed"
		item.Error = toolerr.Sanitize(err.Error())
		return item
	}

	if dryRun {
		return item
	}

	if err := ws.EnsureDirs(); err != nil {
		item.Action = "failed"
		item.Error = toolerr.Sanitize(err.Error())
		return item
	}
	if err := atomicfile.WriteFile(target, content, 0o644); err != nil {
		item.Action = "failed"
		item.Error = toolerr.Sanitize(err.Error())
		return item
	}
	return item
}

// legacyTrackerIndex maps frontmatter reference_link to path for every
// parseable tracker already in dir. Trackers are hand-edited files, so
// unparseable ones are skipped rather than failing the batch. ReadDir
// returns sorted names, so the first match is deterministic.
func legacyTrackerIndex(dir string) map[string]string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	idx := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := tracker.ParseFile(path)
		if err != nil {
			slog.Debug("skipping unparseable tracker", "path", path, "error", err)
			continue
		}
		link := doc.StringField("reference_link")
		if link == "" {
			continue
		}
		if _, ok := idx[link]; !ok {
			idx[link] = path
		}
	}
	return idx
}

// capturedDay picks the calendar day for the tracker filename, falling
// back through created_at to now for rows with unparseable timestamps.
func capturedDay(row db.Job, now time.Time) string {
	for _, raw := range []string{row.CapturedAt, row.CreatedAt} {
		if t, err := time.Parse(db.TimeLayout, raw); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return now.UTC().Format("2006-01-02")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
