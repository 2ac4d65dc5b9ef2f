package ops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/tracker"
)

type TrackerStatusRequest struct {
	TrackerPath string `json:"tracker_path"`
	Status      string `json:"status"`
	Force       bool   `json:"force,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

// TrackerStatusResult reports a single tracker transition. The guardrail
// flag is a pointer: nil means the target did not require artifact
// checks.
type TrackerStatusResult struct {
	TrackerPath          string   `json:"tracker_path"`
	PreviousStatus       string   `json:"previous_status"`
	NewStatus            string   `json:"new_status,omitempty"`
	Action               string   `json:"action"`
	Success              bool     `json:"success"`
	GuardrailCheckPassed *bool    `json:"guardrail_check_passed,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// UpdateTrackerStatus moves one tracker through the application state
// machine. The database is never touched. Resume Written targets always
// run the artifact guardrails, even under force and even when the
// transition would be a noop; force only bypasses the transition policy.
func (o *Ops) UpdateTrackerStatus(ctx context.Context, req TrackerStatusRequest) (*TrackerStatusResult, error) {
	if strings.TrimSpace(req.TrackerPath) == "" {
		return nil, toolerr.Validation("tracker_path is required")
	}
	target, err := tracker.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	path := o.resolve(req.TrackerPath)
	doc, err := tracker.ParseFile(path)
	if err != nil {
		return nil, err
	}

	res := &TrackerStatusResult{
		TrackerPath:    path,
		PreviousStatus: doc.Status,
	}

	if target == tracker.StatusResumeWritten {
		if err := o.resumeGuardrails(doc); err != nil {
			res.Action = "blocked"
			res.GuardrailCheckPassed = boolPtr(false)
			res.Error = itemError(err)
			return res, nil
		}
		res.GuardrailCheckPassed = boolPtr(true)
	}

	switch tracker.PlanTransition(doc.Status, target) {
	case tracker.TransitionNoop:
		res.NewStatus = doc.Status
		res.Success = true
		res.Action = "noop"
		if req.DryRun {
			res.Action = "would_noop"
		}
		return res, nil
	case tracker.TransitionBlocked:
		if !req.Force {
			res.Action = "blocked"
			res.Error = fmt.Sprintf("transition from %q to %q is not allowed; pass force to override", doc.Status, target)
			return res, nil
		}
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("forced transition from %q to %q bypasses the status policy", doc.Status, target))
	}

	res.NewStatus = string(target)
	if req.DryRun {
		res.Action = "would_update"
		res.Success = true
		return res, nil
	}

	if err := tracker.SetStatusFile(path, target); err != nil {
		return nil, err
	}
	slog.Info("tracker status updated", "path", path, "from", doc.Status, "to", target)
	res.Action = "updated"
	res.Success = true
	return res, nil
}

// resumeGuardrails resolves the tracker's resume artifacts and checks
// them. Relative resume paths are anchored at the workflow root.
func (o *Ops) resumeGuardrails(doc *tracker.Document) error {
	pdfPath, ok := doc.ResumePDFPath()
	if !ok {
		return toolerr.Validation("tracker frontmatter has no resume_path")
	}
	return checkResumeArtifacts(o.resolve(pdfPath))
}

func boolPtr(b bool) *bool { return &b }
