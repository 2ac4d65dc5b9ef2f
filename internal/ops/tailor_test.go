package ops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/tracker"
)

const plainTemplate = "\\documentclass{article}\n\\begin{document}\nBase resume.\n\\end{document}\n"

func writeFileAt(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// tailorFixture writes the template and full resume, renders a tracker
// for job 7, and swaps in a fake compiler.
func tailorFixture(t *testing.T, o *Ops, template string) (string, *fakeCompiler) {
	t.Helper()
	writeFileAt(t, o.cfg.Tailor.ResumeTemplate, template)
	writeFileAt(t, o.cfg.Tailor.FullResume, "# Full Resume\n\nYears of Go.\n")
	trackerPath := writeTrackerFile(t, o, "2025-06-10-initech-7.md", tracker.Fields{
		JobDBID:  7,
		Company:  "Initech",
		Position: "Backend Engineer",
		Status:   tracker.StatusReviewed,
	}, "Ship APIs in Go.")
	fc := &fakeCompiler{}
	useFakeCompiler(o, fc)
	return trackerPath, fc
}

func TestCareerTailorBuildsArtifacts(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, fc := tailorFixture(t, o, plainTemplate)

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if res.SuccessCount != 1 || res.FailedCount != 0 {
		t.Fatalf("counts = %d/%d: %+v", res.SuccessCount, res.FailedCount, res.Results)
	}
	item := res.Results[0]
	if !item.Success || item.TemplateAction != "created" || item.ApplicationSlug != "initech-7" {
		t.Fatalf("item = %+v", item)
	}

	resumeDir := filepath.Join(o.cfg.ApplicationsDir, "initech-7", "resume")
	tex, err := os.ReadFile(filepath.Join(resumeDir, "resume.tex"))
	if err != nil {
		t.Fatalf("read tex: %v", err)
	}
	if string(tex) != plainTemplate {
		t.Fatalf("tex content diverged from template")
	}
	aiCtx, err := os.ReadFile(filepath.Join(resumeDir, "ai_context.md"))
	if err != nil {
		t.Fatalf("read ai context: %v", err)
	}
	for _, want := range []string{
		"# AI Context: Backend Engineer at Initech",
		"## Job Description",
		"Ship APIs in Go.",
		"## Full Resume",
		"Years of Go.",
	} {
		if !strings.Contains(string(aiCtx), want) {
			t.Fatalf("ai context missing %q:\n%s", want, aiCtx)
		}
	}
	if info, err := os.Stat(filepath.Join(resumeDir, "resume.pdf")); err != nil || info.Size() == 0 {
		t.Fatalf("compiled pdf missing or empty: %v", err)
	}
	if len(fc.calls) != 1 {
		t.Fatalf("compiler ran %d times, want 1", len(fc.calls))
	}

	want := TailorHandoffItem{ID: 7, TrackerPath: trackerPath, ResumePDFPath: filepath.Join(resumeDir, "resume.pdf")}
	if len(res.SuccessfulItems) != 1 || res.SuccessfulItems[0] != want {
		t.Fatalf("handoff = %+v, want %+v", res.SuccessfulItems, want)
	}
}

func TestCareerTailorPlaceholdersBlockWithoutForce(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, "\\item PROJECT-AI-1\n\\item WORK-BULLET-POINT-2\n")

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	item := res.Results[0]
	if item.Success {
		t.Fatalf("untailored template passed: %+v", item)
	}
	if !strings.Contains(item.Error, "VALIDATION_ERROR") || !strings.Contains(item.Error, "placeholders") {
		t.Fatalf("error = %q", item.Error)
	}
	if item.TemplateAction != "created" {
		t.Fatalf("template action = %q, scaffold should still happen", item.TemplateAction)
	}
	if len(res.SuccessfulItems) != 0 {
		t.Fatalf("handoff = %+v, want none", res.SuccessfulItems)
	}
}

func TestCareerTailorForceLetsPlaceholdersThrough(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, "\\item PROJECT-BE-1\n")

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
		Force: true,
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if !res.Results[0].Success {
		t.Fatalf("forced item failed: %+v", res.Results[0])
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "placeholders") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want the placeholder notice", res.Warnings)
	}
	if len(res.SuccessfulItems) != 1 {
		t.Fatalf("handoff = %+v, want the item", res.SuccessfulItems)
	}
}

func TestCareerTailorPreservesEditedTex(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, "\\item PROJECT-AI-1\n")
	ctx := context.Background()

	first, err := o.CareerTailor(ctx, TailorRequest{Items: []TailorItem{{TrackerPath: trackerPath}}})
	if err != nil {
		t.Fatalf("first tailor: %v", err)
	}
	if first.Results[0].Success {
		t.Fatalf("fresh scaffold should fail the placeholder check")
	}

	// The agent edits the scaffold, then re-runs.
	tex := filepath.Join(o.cfg.ApplicationsDir, "initech-7", "resume", "resume.tex")
	writeFileAt(t, tex, "\\item Built the billing pipeline in Go\n")

	second, err := o.CareerTailor(ctx, TailorRequest{Items: []TailorItem{{TrackerPath: trackerPath}}})
	if err != nil {
		t.Fatalf("second tailor: %v", err)
	}
	item := second.Results[0]
	if !item.Success || item.TemplateAction != "preserved" {
		t.Fatalf("item = %+v, want preserved success", item)
	}
	data, _ := os.ReadFile(tex)
	if !strings.Contains(string(data), "billing pipeline") {
		t.Fatalf("re-run clobbered the edited tex")
	}
}

func TestCareerTailorForceOverwritesTex(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, plainTemplate)
	ctx := context.Background()

	if _, err := o.CareerTailor(ctx, TailorRequest{Items: []TailorItem{{TrackerPath: trackerPath}}}); err != nil {
		t.Fatalf("first tailor: %v", err)
	}
	tex := filepath.Join(o.cfg.ApplicationsDir, "initech-7", "resume", "resume.tex")
	writeFileAt(t, tex, "edited by hand\n")

	res, err := o.CareerTailor(ctx, TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
		Force: true,
	})
	if err != nil {
		t.Fatalf("forced tailor: %v", err)
	}
	if res.Results[0].TemplateAction != "overwritten" {
		t.Fatalf("template action = %q, want overwritten", res.Results[0].TemplateAction)
	}
	data, _ := os.ReadFile(tex)
	if string(data) != plainTemplate {
		t.Fatalf("forced run did not restore the template")
	}
}

func TestCareerTailorCompileFailure(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, fc := tailorFixture(t, o, plainTemplate)
	fc.err = toolerr.Compile("pdflatex failed: exit status 1: ! Undefined control sequence")

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	item := res.Results[0]
	if item.Success || !strings.Contains(item.Error, "COMPILE_ERROR") {
		t.Fatalf("item = %+v, want a compile failure", item)
	}
}

func TestCareerTailorEmptyPDFFailsVerification(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, fc := tailorFixture(t, o, plainTemplate)
	fc.pdfData = []byte{}

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	item := res.Results[0]
	if item.Success || !strings.Contains(item.Error, "empty PDF") {
		t.Fatalf("item = %+v, want the empty pdf failure", item)
	}
}

func TestCareerTailorMissingTemplate(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, plainTemplate)
	if err := os.Remove(o.cfg.Tailor.ResumeTemplate); err != nil {
		t.Fatalf("remove template: %v", err)
	}

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if !strings.Contains(res.Results[0].Error, "TEMPLATE_NOT_FOUND") {
		t.Fatalf("error = %q, want TEMPLATE_NOT_FOUND", res.Results[0].Error)
	}
}

func TestCareerTailorMissingFullResume(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, plainTemplate)
	if err := os.Remove(o.cfg.Tailor.FullResume); err != nil {
		t.Fatalf("remove full resume: %v", err)
	}

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: trackerPath}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if !strings.Contains(res.Results[0].Error, "full resume not found") {
		t.Fatalf("error = %q", res.Results[0].Error)
	}
}

func TestCareerTailorPerItemIsolation(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	trackerPath, _ := tailorFixture(t, o, plainTemplate)

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{
			{TrackerPath: filepath.Join(o.cfg.TrackersDir, "missing.md")},
			{TrackerPath: trackerPath},
		},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if res.SuccessCount != 1 || res.FailedCount != 1 {
		t.Fatalf("counts = %d/%d", res.SuccessCount, res.FailedCount)
	}
	if res.Results[0].Success || !strings.Contains(res.Results[0].Error, "FILE_NOT_FOUND") {
		t.Fatalf("results[0] = %+v", res.Results[0])
	}
	if !res.Results[1].Success {
		t.Fatalf("results[1] = %+v, the good item must still run", res.Results[1])
	}
}

func TestCareerTailorJobDBIDResolution(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	writeFileAt(t, o.cfg.Tailor.ResumeTemplate, plainTemplate)
	writeFileAt(t, o.cfg.Tailor.FullResume, "# Full Resume\n")
	useFakeCompiler(o, &fakeCompiler{})

	// job_db_id 0 in the tracker means no handoff entry.
	noID := writeTrackerFile(t, o, "no-id.md", tracker.Fields{
		Company: "Globex", Position: "SRE", Status: tracker.StatusReviewed,
	}, "Run things.")

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: noID}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if !res.Results[0].Success || len(res.SuccessfulItems) != 0 {
		t.Fatalf("result = %+v handoff = %+v, want success without handoff",
			res.Results[0], res.SuccessfulItems)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "no job_db_id") {
		t.Fatalf("warnings = %v", res.Warnings)
	}

	// An item-level id overrides the tracker.
	res, err = o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: noID, JobDBID: json.Number("12")}},
	})
	if err != nil {
		t.Fatalf("tailor with override: %v", err)
	}
	if len(res.SuccessfulItems) != 1 || res.SuccessfulItems[0].ID != 12 {
		t.Fatalf("handoff = %+v, want id 12", res.SuccessfulItems)
	}

	// A garbage override fails the item.
	res, err = o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: noID, JobDBID: json.Number("zero")}},
	})
	if err != nil {
		t.Fatalf("tailor with bad override: %v", err)
	}
	if res.Results[0].Success || !strings.Contains(res.Results[0].Error, "job_db_id") {
		t.Fatalf("result = %+v, want a validation failure", res.Results[0])
	}
}

func TestCareerTailorSlugFromResumePath(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	writeFileAt(t, o.cfg.Tailor.ResumeTemplate, plainTemplate)
	writeFileAt(t, o.cfg.Tailor.FullResume, "# Full Resume\n")
	useFakeCompiler(o, &fakeCompiler{})

	resumePDF := filepath.Join(o.cfg.ApplicationsDir, "custom-app", "resume", "resume.pdf")
	path := writeTrackerFile(t, o, "custom.md", tracker.Fields{
		JobDBID: 3, Company: "Initech", Position: "Backend Engineer",
		Status:     tracker.StatusReviewed,
		ResumePath: "[[" + resumePDF + "]]",
	}, "Ship APIs.")

	res, err := o.CareerTailor(context.Background(), TailorRequest{
		Items: []TailorItem{{TrackerPath: path}},
	})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	item := res.Results[0]
	if item.ApplicationSlug != "custom-app" {
		t.Fatalf("slug = %q, want the resume_path to win", item.ApplicationSlug)
	}
	if item.ResumePDFPath != resumePDF {
		t.Fatalf("pdf path = %q, want %q", item.ResumePDFPath, resumePDF)
	}
}

func TestCareerTailorRejectsUnsafeCompileCommand(t *testing.T) {
	t.Parallel()

	// The compile command is parsed before any item runs, so no fixture
	// files are needed.
	o := newTestOps(t, nil)
	_, err := o.CareerTailor(context.Background(), TailorRequest{
		Items:       []TailorItem{{TrackerPath: "tracker.md"}},
		PdflatexCmd: "pdflatex && rm -rf /",
	})
	if toolerr.CodeOf(err) != toolerr.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestCareerTailorEmptyBatch(t *testing.T) {
	t.Parallel()

	o := newTestOps(t, nil)
	res, err := o.CareerTailor(context.Background(), TailorRequest{})
	if err != nil {
		t.Fatalf("tailor: %v", err)
	}
	if len(res.Results) != 0 || res.SuccessfulItems == nil {
		t.Fatalf("result = %+v, want empty shapes", res)
	}
}
