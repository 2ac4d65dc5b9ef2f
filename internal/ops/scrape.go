package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"jobworkflow/internal/atomicfile"
	"jobworkflow/internal/db"
	"jobworkflow/internal/source"
	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/workspace"
)

// ScrapeRequest is the option set for an ingestion run. Zero values fall
// back to the configured defaults; booleans and retry_sleep are pointers
// because false and zero are legal overrides.
type ScrapeRequest struct {
	Terms              []string `json:"terms,omitempty"`
	Location           string   `json:"location,omitempty"`
	Sites              []string `json:"sites,omitempty"`
	ResultsWanted      int      `json:"results_wanted,omitempty"`
	HoursOld           int      `json:"hours_old,omitempty"`
	Status             string   `json:"status,omitempty"`
	RequireDescription *bool    `json:"require_description,omitempty"`
	PreflightHost      string   `json:"preflight_host,omitempty"`
	RetryCount         int      `json:"retry_count,omitempty"`
	RetrySleep         *int     `json:"retry_sleep,omitempty"`
	RetryBackoff       int      `json:"retry_backoff,omitempty"`
	SaveCaptureJSON    *bool    `json:"save_capture_json,omitempty"`
	CaptureDir         string   `json:"capture_dir,omitempty"`
	DBPath             string   `json:"db_path,omitempty"`
	DryRun             bool     `json:"dry_run,omitempty"`
}

// TermResult reports one search term's pipeline outcome.
type TermResult struct {
	Term                 string `json:"term"`
	Success              bool   `json:"success"`
	FetchedCount         int    `json:"fetched_count"`
	InsertedCount        int    `json:"inserted_count"`
	DuplicateCount       int    `json:"duplicate_count"`
	SkippedNoURL         int    `json:"skipped_no_url"`
	SkippedNoDescription int    `json:"skipped_no_description"`
	CapturePath          string `json:"capture_path,omitempty"`
	Error                string `json:"error,omitempty"`
}

// ScrapeTotals aggregates the per-term counters.
type ScrapeTotals struct {
	TermCount            int `json:"term_count"`
	SuccessfulTerms      int `json:"successful_terms"`
	FailedTerms          int `json:"failed_terms"`
	FetchedCount         int `json:"fetched_count"`
	InsertedCount        int `json:"inserted_count"`
	DuplicateCount       int `json:"duplicate_count"`
	SkippedNoURL         int `json:"skipped_no_url"`
	SkippedNoDescription int `json:"skipped_no_description"`
}

// ScrapeResult is the run summary for a scrape_jobs call.
type ScrapeResult struct {
	RunID      string       `json:"run_id"`
	StartedAt  string       `json:"started_at"`
	FinishedAt string       `json:"finished_at"`
	Duration   string       `json:"duration"`
	DryRun     bool         `json:"dry_run"`
	Terms      []TermResult `json:"terms"`
	Totals     ScrapeTotals `json:"totals"`
}

// scrapeSettings is a ScrapeRequest with every default applied and every
// range checked.
type scrapeSettings struct {
	terms         []string
	location      string
	sites         []string
	resultsWanted int
	hoursOld      int
	status        db.Status
	requireDesc   bool
	preflightHost string
	retryCount    int
	retrySleep    int
	retryBackoff  int
	saveCapture   bool
	captureDir    string
	dryRun        bool
}

func (o *Ops) resolveScrape(req ScrapeRequest) (scrapeSettings, error) {
	s := scrapeSettings{
		terms:         req.Terms,
		location:      strings.TrimSpace(req.Location),
		sites:         req.Sites,
		resultsWanted: req.ResultsWanted,
		hoursOld:      req.HoursOld,
		requireDesc:   true,
		preflightHost: strings.TrimSpace(req.PreflightHost),
		retryCount:    req.RetryCount,
		retrySleep:    30,
		retryBackoff:  req.RetryBackoff,
		saveCapture:   true,
		captureDir:    req.CaptureDir,
		dryRun:        req.DryRun,
	}
	if len(s.terms) == 0 {
		s.terms = o.cfg.Scrape.Terms
	}
	if s.location == "" {
		s.location = o.cfg.Scrape.Location
	}
	if len(s.sites) == 0 {
		s.sites = o.cfg.Scrape.Sites
	}
	if s.resultsWanted == 0 {
		s.resultsWanted = o.cfg.Scrape.ResultsWanted
	}
	if s.hoursOld == 0 {
		s.hoursOld = o.cfg.Scrape.HoursOld
	}
	if s.preflightHost == "" {
		s.preflightHost = source.DefaultPreflightHost
	}
	if s.retryCount == 0 {
		s.retryCount = 3
	}
	if s.retryBackoff == 0 {
		s.retryBackoff = 2
	}
	if req.RequireDescription != nil {
		s.requireDesc = *req.RequireDescription
	}
	if req.RetrySleep != nil {
		s.retrySleep = *req.RetrySleep
	}
	if req.SaveCaptureJSON != nil {
		s.saveCapture = *req.SaveCaptureJSON
	}
	if s.captureDir == "" {
		s.captureDir = o.cfg.CaptureDir
	} else {
		s.captureDir = o.resolve(s.captureDir)
	}

	s.status = db.StatusNew
	if req.Status != "" {
		parsed, err := db.ParseStatus(req.Status)
		if err != nil {
			return scrapeSettings{}, toolerr.Validation("%v", err)
		}
		s.status = parsed
	}

	for i, term := range s.terms {
		if strings.TrimSpace(term) == "" {
			return scrapeSettings{}, toolerr.Validation("terms[%d] is empty", i)
		}
	}
	for i, site := range s.sites {
		if strings.TrimSpace(site) == "" {
			return scrapeSettings{}, toolerr.Validation("sites[%d] is empty", i)
		}
	}
	if err := checkRange("results_wanted", s.resultsWanted, 1, 200); err != nil {
		return scrapeSettings{}, err
	}
	if err := checkRange("hours_old", s.hoursOld, 1, 168); err != nil {
		return scrapeSettings{}, err
	}
	if err := checkRange("retry_count", s.retryCount, 1, 10); err != nil {
		return scrapeSettings{}, err
	}
	if err := checkRange("retry_sleep", s.retrySleep, 0, 300); err != nil {
		return scrapeSettings{}, err
	}
	if err := checkRange("retry_backoff", s.retryBackoff, 1, 10); err != nil {
		return scrapeSettings{}, err
	}
	return s, nil
}

// ScrapeJobs runs the ingestion pipeline for every requested term. Terms
// are isolated: one term's preflight, fetch, or insert failure never
// aborts its siblings. Dry-run executes the whole pipeline except the
// capture write and the database insert.
func (o *Ops) ScrapeJobs(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	s, err := o.resolveScrape(req)
	if err != nil {
		return nil, err
	}

	started := o.now()
	res := &ScrapeResult{
		RunID:     newRunID("scrape", started),
		StartedAt: db.FormatTime(started),
		DryRun:    s.dryRun,
		Terms:     make([]TermResult, 0, len(s.terms)),
	}

	var store *db.Store
	if !s.dryRun {
		store, err = db.Open(o.dbPath(req.DBPath))
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}

	slog.Info("scrape run starting",
		"run_id", res.RunID, "terms", len(s.terms), "sites", s.sites, "dry_run", s.dryRun)

	for _, term := range s.terms {
		tr := o.scrapeTerm(ctx, store, term, s)
		if tr.Success {
			slog.Info("scrape term done", "run_id", res.RunID, "term", term,
				"fetched", tr.FetchedCount, "inserted", tr.InsertedCount, "duplicates", tr.DuplicateCount)
		} else {
			slog.Warn("scrape term failed", "run_id", res.RunID, "term", term, "error", tr.Error)
		}
		res.Terms = append(res.Terms, tr)

		res.Totals.TermCount++
		if tr.Success {
			res.Totals.SuccessfulTerms++
		} else {
			res.Totals.FailedTerms++
		}
		res.Totals.FetchedCount += tr.FetchedCount
		res.Totals.InsertedCount += tr.InsertedCount
		res.Totals.DuplicateCount += tr.DuplicateCount
		res.Totals.SkippedNoURL += tr.SkippedNoURL
		res.Totals.SkippedNoDescription += tr.SkippedNoDescription
	}

	finished := o.now()
	res.FinishedAt = db.FormatTime(finished)
	res.Duration = isoDuration(finished.Sub(started))
	return res, nil
}

func (o *Ops) scrapeTerm(ctx context.Context, store *db.Store, term string, s scrapeSettings) TermResult {
	tr := TermResult{Term: term}

	if err := o.preflight(ctx, s.preflightHost, s.retryCount, s.retrySleep, s.retryBackoff); err != nil {
		tr.Error = toolerr.Sanitize(fmt.Sprintf("preflight %s: %v", s.preflightHost, err))
		return tr
	}

	raws, err := o.src.Fetch(ctx, term, s.location, s.sites, s.resultsWanted, s.hoursOld)
	if err != nil {
		tr.Error = toolerr.Sanitize(fmt.Sprintf("fetch %q: %v", term, err))
		return tr
	}
	tr.FetchedCount = len(raws)

	// A single requested site overrides whatever the source reported.
	siteOverride := ""
	if len(s.sites) == 1 {
		siteOverride = s.sites[0]
	}

	now := o.now()
	cleaned := make([]db.CleanedRecord, 0, len(raws))
	for _, raw := range raws {
		rec := source.Normalize(raw, siteOverride, now)
		if rec.URL == "" {
			tr.SkippedNoURL++
			continue
		}
		if s.requireDesc && rec.Description == "" {
			tr.SkippedNoDescription++
			continue
		}
		cleaned = append(cleaned, rec)
	}

	if s.saveCapture && !s.dryRun {
		path, err := writeCapture(s, term, raws)
		if err != nil {
			slog.Warn("capture write failed", "term", term, "error", err)
		} else {
			tr.CapturePath = path
		}
	}

	if !s.dryRun {
		inserted, duplicates, err := store.InsertCleaned(ctx, cleaned, s.status, db.FormatTime(now))
		if err != nil {
			tr.Error = toolerr.Sanitize(fmt.Sprintf("ingest %q: %v", term, err))
			return tr
		}
		tr.InsertedCount = inserted
		tr.DuplicateCount = duplicates
	}

	tr.Success = true
	return tr
}

// preflight resolves the board hostname before fetching. Between
// attempts it sleeps retry_sleep * retry_backoff^(attempt-1) seconds.
func (o *Ops) preflight(ctx context.Context, host string, attempts, sleepSec, backoff int) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := o.lookupHost(ctx, host); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt == attempts {
			break
		}
		delay := time.Duration(sleepSec) * time.Second
		for i := 1; i < attempt; i++ {
			delay *= time.Duration(backoff)
		}
		slog.Warn("dns preflight failed, retrying",
			"host", host, "attempt", attempt, "delay", delay, "error", lastErr)
		if err := o.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("dns lookup %s failed after %d attempts: %v", host, attempts, lastErr)
}

// writeCapture saves the raw fetch payload for one term as a
// pretty-printed JSON array named after the search parameters.
func writeCapture(s scrapeSettings, term string, raws []source.RawRecord) (string, error) {
	name := fmt.Sprintf("jobspy_%s_%s_%s_%dh.json",
		workspace.Normalize(strings.Join(s.sites, " ")),
		workspace.Normalize(term),
		workspace.Normalize(s.location),
		s.hoursOld)
	path := filepath.Join(s.captureDir, name)

	data, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return "", err
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
