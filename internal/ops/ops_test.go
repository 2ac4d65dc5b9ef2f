package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobworkflow/internal/config"
	"jobworkflow/internal/db"
	"jobworkflow/internal/latex"
	"jobworkflow/internal/source"
	"jobworkflow/internal/tracker"
)

var testEpoch = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// stubSource returns canned records and remembers fetch arguments.
// failTerms lets a test fail specific terms while others succeed.
type stubSource struct {
	records   []source.RawRecord
	err       error
	failTerms map[string]error
	calls     []fetchCall
}

type fetchCall struct {
	term     string
	location string
	sites    []string
	results  int
	hours    int
}

func (s *stubSource) Fetch(_ context.Context, term, location string, sites []string, resultsWanted, hoursOld int) ([]source.RawRecord, error) {
	s.calls = append(s.calls, fetchCall{term, location, sites, resultsWanted, hoursOld})
	if err, ok := s.failTerms[term]; ok {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

// fakeCompiler writes a PDF next to the tex source instead of running
// pdflatex. pdfData nil means a small valid-looking payload.
type fakeCompiler struct {
	err     error
	pdfData []byte
	calls   []string
}

func (f *fakeCompiler) Compile(_ context.Context, texPath string) (string, error) {
	f.calls = append(f.calls, texPath)
	if f.err != nil {
		return "", f.err
	}
	data := f.pdfData
	if data == nil {
		data = []byte("%PDF-1.4 generated")
	}
	pdf := strings.TrimSuffix(texPath, ".tex") + ".pdf"
	if err := os.WriteFile(pdf, data, 0o644); err != nil {
		return "", err
	}
	return "compile ok", nil
}

// newTestOps builds an Ops rooted in a fresh temp directory with a
// deterministic clock, instant sleeps, and DNS that always resolves.
func newTestOps(t *testing.T, src source.Source) *Ops {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Root:            root,
		BaseDir:         root,
		DBPath:          filepath.Join(root, "data", "capture", "jobs.db"),
		TrackersDir:     filepath.Join(root, "trackers"),
		ApplicationsDir: filepath.Join(root, "applications"),
		CaptureDir:      filepath.Join(root, "data", "capture"),
		ServerName:      "jobworkflow",
		Scrape: config.ScrapeConfig{
			Terms:         []string{"backend engineer"},
			Location:      "Ontario, Canada",
			Sites:         []string{"linkedin"},
			ResultsWanted: 20,
			HoursOld:      2,
		},
		Tailor: config.TailorConfig{
			ResumeTemplate: filepath.Join(root, "templates", "resume.tex"),
			FullResume:     filepath.Join(root, "templates", "full_resume.md"),
			PdflatexCmd:    "pdflatex -interaction=nonstopmode -halt-on-error",
		},
	}
	o := New(cfg, src)
	o.lookupHost = func(context.Context, string) error { return nil }
	o.sleep = func(context.Context, time.Duration) error { return nil }
	clock := testEpoch
	o.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return o
}

func useFakeCompiler(o *Ops, fc *fakeCompiler) {
	o.newCompiler = func(string) (latex.Compiler, error) { return fc, nil }
}

// seedJobs creates the database and inserts n rows with distinct URLs
// and ascending captured_at, so row ids run 1..n in insert order and
// QueryNew returns them newest first.
func seedJobs(t *testing.T, o *Ops, status db.Status, n int) {
	t.Helper()
	store, err := db.Open(o.cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	records := make([]db.CleanedRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, db.CleanedRecord{
			JobID:       fmt.Sprintf("40%02d", i),
			Title:       fmt.Sprintf("Engineer %d", i),
			Company:     fmt.Sprintf("Acme %d", i),
			Description: "Build and run services.",
			URL:         fmt.Sprintf("https://www.linkedin.com/jobs/view/40%02d", i),
			Location:    "Toronto, ON",
			Source:      "linkedin",
			CapturedAt:  db.FormatTime(testEpoch.Add(time.Duration(i) * time.Minute)),
			PayloadJSON: "{}",
		})
	}
	if _, _, err := store.InsertCleaned(context.Background(), records, status, db.Now()); err != nil {
		t.Fatalf("seed jobs: %v", err)
	}
}

func getJob(t *testing.T, o *Ops, id int64) db.Job {
	t.Helper()
	store, err := db.OpenExisting(o.cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	job, err := store.GetJob(context.Background(), id)
	if err != nil {
		t.Fatalf("get job %d: %v", id, err)
	}
	return job
}

func countStatuses(t *testing.T, o *Ops) map[db.Status]int {
	t.Helper()
	store, err := db.OpenExisting(o.cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	counts, err := store.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("count statuses: %v", err)
	}
	return counts
}

// writeTrackerFile renders a tracker into the trackers dir and returns
// its path.
func writeTrackerFile(t *testing.T, o *Ops, name string, f tracker.Fields, desc string) string {
	t.Helper()
	content, err := tracker.Render(f, desc)
	if err != nil {
		t.Fatalf("render tracker: %v", err)
	}
	path := filepath.Join(o.cfg.TrackersDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir trackers: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write tracker: %v", err)
	}
	return path
}

// writeResumeArtifacts creates a non-empty resume.pdf with a tailored
// companion resume.tex under dir and returns the pdf path.
func writeResumeArtifacts(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir resume dir: %v", err)
	}
	pdf := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	tex := filepath.Join(dir, "resume.tex")
	if err := os.WriteFile(tex, []byte("\\documentclass{article}\n\\begin{document}\nTailored.\n\\end{document}\n"), 0o644); err != nil {
		t.Fatalf("write tex: %v", err)
	}
	return pdf
}
