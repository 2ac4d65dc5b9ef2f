package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"jobworkflow/internal/latex"
	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/tracker"
	"jobworkflow/internal/workspace"
)

// TailorItem names one tracker to build artifacts for. JobDBID overrides
// the tracker's own job_db_id field when present.
type TailorItem struct {
	TrackerPath string      `json:"tracker_path"`
	JobDBID     json.Number `json:"job_db_id,omitempty"`
}

type TailorRequest struct {
	Items           []TailorItem `json:"items"`
	Force           bool         `json:"force,omitempty"`
	ResumeTemplate  string       `json:"resume_template,omitempty"`
	FullResume      string       `json:"full_resume,omitempty"`
	ApplicationsDir string       `json:"applications_dir,omitempty"`
	PdflatexCmd     string       `json:"pdflatex_cmd,omitempty"`
}

type TailorItemResult struct {
	TrackerPath     string `json:"tracker_path"`
	JobDBID         int64  `json:"job_db_id,omitempty"`
	Company         string `json:"company,omitempty"`
	Position        string `json:"position,omitempty"`
	ApplicationSlug string `json:"application_slug,omitempty"`
	TemplateAction  string `json:"template_action,omitempty"`
	ResumePDFPath   string `json:"resume_pdf_path,omitempty"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

// TailorHandoffItem is the payload a successful item contributes for the
// follow-up finalize call.
type TailorHandoffItem struct {
	ID            int64  `json:"id"`
	TrackerPath   string `json:"tracker_path"`
	ResumePDFPath string `json:"resume_pdf_path"`
}

type TailorResult struct {
	SuccessCount    int                 `json:"success_count"`
	FailedCount     int                 `json:"failed_count"`
	Results         []TailorItemResult  `json:"results"`
	SuccessfulItems []TailorHandoffItem `json:"successful_items"`
	Warnings        []string            `json:"warnings,omitempty"`
}

// tailorSettings is the loop-invariant context for one tailor batch.
type tailorSettings struct {
	templatePath  string
	fullResume    string
	fullResumeErr error
	appsDir       string
	compiler      latex.Compiler
	force         bool
}

// CareerTailor builds resume artifacts for a batch of trackers: the
// application workspace, resume.tex from the template, a regenerated
// ai_context.md, and a compiled resume.pdf. It never writes the database
// or tracker statuses; the handoff list feeds finalize_resume_batch.
// Items are processed in input order and isolated from each other.
func (o *Ops) CareerTailor(ctx context.Context, req TailorRequest) (*TailorResult, error) {
	if err := checkBatchSize(len(req.Items)); err != nil {
		return nil, err
	}

	res := &TailorResult{
		Results:         make([]TailorItemResult, 0, len(req.Items)),
		SuccessfulItems: []TailorHandoffItem{},
	}
	if len(req.Items) == 0 {
		return res, nil
	}

	templatePath := o.cfg.Tailor.ResumeTemplate
	if req.ResumeTemplate != "" {
		templatePath = o.resolve(req.ResumeTemplate)
	}
	fullResumePath := o.cfg.Tailor.FullResume
	if req.FullResume != "" {
		fullResumePath = o.resolve(req.FullResume)
	}
	appsDir := o.cfg.ApplicationsDir
	if req.ApplicationsDir != "" {
		appsDir = o.resolve(req.ApplicationsDir)
	}
	compileCmd := o.cfg.Tailor.PdflatexCmd
	if req.PdflatexCmd != "" {
		compileCmd = req.PdflatexCmd
	}

	compiler, err := o.newCompiler(compileCmd)
	if err != nil {
		return nil, err
	}

	// Read once; a missing full resume fails every item the same way
	// instead of aborting the call.
	fullResume, fullResumeErr := os.ReadFile(fullResumePath)
	if fullResumeErr != nil {
		fullResumeErr = toolerr.FileNotFound("full resume not found at %s", fullResumePath)
	}

	settings := tailorSettings{
		templatePath:  templatePath,
		fullResume:    string(fullResume),
		fullResumeErr: fullResumeErr,
		appsDir:       appsDir,
		compiler:      compiler,
		force:         req.Force,
	}

	for i, item := range req.Items {
		ir := o.tailorItem(ctx, item, settings, i, res)
		if ir.Success {
			res.SuccessCount++
		} else {
			res.FailedCount++
		}
		res.Results = append(res.Results, ir)
	}

	slog.Info("career tailor done",
		"items", len(req.Items), "succeeded", res.SuccessCount, "failed", res.FailedCount)
	return res, nil
}

func (o *Ops) tailorItem(ctx context.Context, item TailorItem, s tailorSettings, index int, res *TailorResult) TailorItemResult {
	ir := TailorItemResult{TrackerPath: item.TrackerPath}

	if strings.TrimSpace(item.TrackerPath) == "" {
		ir.Error = itemError(toolerr.Validation("tracker_path is required"))
		return ir
	}
	path := o.resolve(item.TrackerPath)
	ir.TrackerPath = path

	doc, err := tracker.ParseFile(path)
	if err != nil {
		ir.Error = itemError(err)
		return ir
	}
	ir.Company = doc.StringField("company")
	ir.Position = doc.StringField("position")

	var jobDBID int64
	if item.JobDBID.String() != "" {
		jobDBID, err = parseItemID(item.JobDBID)
		if err != nil {
			ir.Error = itemError(toolerr.Validation("job_db_id: %v", err))
			return ir
		}
	} else if v, ok := doc.IntField("job_db_id"); ok && v > 0 {
		jobDBID = v
	}
	ir.JobDBID = jobDBID

	jobDesc, err := doc.JobDescription()
	if err != nil {
		ir.Error = itemError(err)
		return ir
	}

	slug := workspace.ResolveSlug(doc.StringField("resume_path"), ir.Company, ir.Position, jobDBID)
	ir.ApplicationSlug = slug

	ws := workspace.New(s.appsDir, slug)
	if err := ws.EnsureDirs(); err != nil {
		ir.Error = itemError(err)
		return ir
	}

	action, err := workspace.MaterializeTemplate(s.templatePath, ws.ResumeTex(), s.force)
	if err != nil {
		ir.Error = itemError(err)
		return ir
	}
	ir.TemplateAction = string(action)

	if s.fullResumeErr != nil {
		ir.Error = itemError(s.fullResumeErr)
		return ir
	}
	if err := ws.WriteAIContext(ir.Company, ir.Position, jobDesc, s.fullResume); err != nil {
		ir.Error = itemError(err)
		return ir
	}

	if _, err := s.compiler.Compile(ctx, ws.ResumeTex()); err != nil {
		ir.Error = itemError(err)
		return ir
	}
	pdfPath := ws.ResumePDF()
	info, err := os.Stat(pdfPath)
	if err != nil {
		ir.Error = itemError(toolerr.Compile("compiler produced no PDF at %s", pdfPath))
		return ir
	}
	if info.Size() == 0 {
		ir.Error = itemError(toolerr.Compile("compiler produced an empty PDF at %s", pdfPath))
		return ir
	}

	// A tex file still carrying template placeholders compiled fine but
	// was never tailored. Without force that fails the item here; with
	// force it passes through and the finalize guardrail blocks it.
	texData, err := os.ReadFile(ws.ResumeTex())
	if err != nil {
		ir.Error = itemError(err)
		return ir
	}
	if found := workspace.FindPlaceholders(texData); len(found) > 0 {
		if !s.force {
			ir.Error = itemError(toolerr.Validation(
				"resume.tex still contains template placeholders: %s", strings.Join(found, ", ")))
			return ir
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"items[%d] (%s): resume.tex still contains template placeholders; finalize will block until they are replaced",
			index, slug))
	}

	ir.ResumePDFPath = pdfPath
	ir.Success = true

	if jobDBID > 0 {
		res.SuccessfulItems = append(res.SuccessfulItems, TailorHandoffItem{
			ID:            jobDBID,
			TrackerPath:   path,
			ResumePDFPath: pdfPath,
		})
	} else {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"items[%d] (%s): no job_db_id resolved; excluded from successful_items", index, slug))
	}
	return ir
}
