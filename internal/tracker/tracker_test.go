package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobworkflow/internal/toolerr"
)

const sampleTracker = `---
job_db_id: 42
job_id: "4011223344"
company: Acme Robotics
position: Backend Engineer
status: Reviewed
application_date: 2025-06-11
reference_link: https://www.linkedin.com/jobs/view/4011223344
resume_path: "[[/vault/applications/acme_robotics-42/resume/resume.pdf]]"
cover_letter_path: "[[/vault/applications/acme_robotics-42/cover/cover-letter.pdf]]"
---

## Job Description

We build robots. You build the backend behind them.

Requirements:
- Go
- SQL

## Notes

Spoke to recruiter on Tuesday.
`

func TestParseExtractsFrontmatterAndBody(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleTracker))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Status != "Reviewed" {
		t.Fatalf("expected status Reviewed, got %q", doc.Status)
	}
	if got := doc.StringField("company"); got != "Acme Robotics" {
		t.Fatalf("expected company field, got %q", got)
	}
	if got := doc.StringField("missing"); got != "" {
		t.Fatalf("expected empty string for absent key, got %q", got)
	}
	id, ok := doc.IntField("job_db_id")
	if !ok || id != 42 {
		t.Fatalf("expected job_db_id 42, got %d ok=%v", id, ok)
	}
	if !strings.Contains(doc.Body, "## Notes") {
		t.Fatalf("body missing notes section:\n%s", doc.Body)
	}
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"no opening fence", "job_db_id: 1\nstatus: Reviewed\n"},
		{"no closing fence", "---\nstatus: Reviewed\n"},
		{"invalid yaml", "---\nstatus: [unterminated\n---\nbody\n"},
		{"missing status", "---\njob_db_id: 1\n---\nbody\n"},
		{"non-string status", "---\nstatus: 17\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatalf("expected parse error")
			}
			if code := toolerr.CodeOf(err); code != toolerr.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %s", code)
			}
		})
	}
}

func TestParseFileMissingIsFileNotFound(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()

	_, err := ParseFile(filepath.Join(tmp, "absent.md"))
	if err == nil {
		t.Fatalf("expected error for missing tracker")
	}
	if code := toolerr.CodeOf(err); code != toolerr.CodeFileNotFound {
		t.Fatalf("expected FILE_NOT_FOUND, got %s", code)
	}
}

func TestJobDescriptionStopsAtNextHeading(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleTracker))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	desc, err := doc.JobDescription()
	if err != nil {
		t.Fatalf("job description: %v", err)
	}
	if !strings.HasPrefix(desc, "We build robots.") {
		t.Fatalf("unexpected description start: %q", desc)
	}
	if strings.Contains(desc, "Notes") || strings.Contains(desc, "recruiter") {
		t.Fatalf("description leaked past next heading:\n%s", desc)
	}
}

func TestJobDescriptionHeadingIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte("---\nstatus: Reviewed\n---\n\n##   JOB DESCRIPTION\n\ntext here\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	desc, err := doc.JobDescription()
	if err != nil {
		t.Fatalf("job description: %v", err)
	}
	if desc != "text here" {
		t.Fatalf("expected %q, got %q", "text here", desc)
	}
}

func TestJobDescriptionMissingSection(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte("---\nstatus: Reviewed\n---\n\n## Notes\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := doc.JobDescription(); err == nil {
		t.Fatalf("expected error for missing job description section")
	}
}

func TestIntFieldToleratesHandEditedShapes(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte("---\nstatus: Reviewed\na: 7\nb: \"19\"\nc: 3.5\nd: text\n---\nbody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := doc.IntField("a"); !ok || v != 7 {
		t.Fatalf("int key: got %d ok=%v", v, ok)
	}
	if v, ok := doc.IntField("b"); !ok || v != 19 {
		t.Fatalf("digit string key: got %d ok=%v", v, ok)
	}
	if _, ok := doc.IntField("c"); ok {
		t.Fatalf("fractional value should not parse as int")
	}
	if _, ok := doc.IntField("d"); ok {
		t.Fatalf("text value should not parse as int")
	}
}

func TestStripWikiLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"[[/a/b/resume.pdf]]", "/a/b/resume.pdf"},
		{"  [[ spaced/path.pdf ]]  ", "spaced/path.pdf"},
		{"/plain/path.pdf", "/plain/path.pdf"},
		{"[[]]", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripWikiLink(tt.in); got != tt.want {
			t.Fatalf("StripWikiLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResumePDFPath(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleTracker))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	path, ok := doc.ResumePDFPath()
	if !ok {
		t.Fatalf("expected resume path")
	}
	if path != "/vault/applications/acme_robotics-42/resume/resume.pdf" {
		t.Fatalf("unexpected resume path %q", path)
	}

	bare, err := Parse([]byte("---\nstatus: Reviewed\n---\nbody\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := bare.ResumePDFPath(); ok {
		t.Fatalf("expected no resume path on bare tracker")
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	got := Filename("2025-06-11", "acme_robotics", 42)
	if got != "2025-06-11-acme_robotics-42.md" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func writeTestTracker(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tracker: %v", err)
	}
	return path
}
