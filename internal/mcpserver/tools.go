package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createScrapeJobsTool returns the scrape_jobs tool definition
func createScrapeJobsTool() mcp.Tool {
	return mcp.NewTool("scrape_jobs",
		mcp.WithDescription("Fetch postings from remote job boards into the canonical job queue. Terms run in isolation, records are deduplicated by URL, and every argument falls back to configuration."),
		mcp.WithArray("terms",
			mcp.WithStringItems(),
			mcp.Description("Search terms; each term is fetched independently"),
		),
		mcp.WithString("location",
			mcp.Description("Location filter passed to the job boards"),
		),
		mcp.WithArray("sites",
			mcp.WithStringItems(),
			mcp.Description("Job boards to query (currently: linkedin)"),
		),
		mcp.WithNumber("results_wanted",
			mcp.Description("Results per term, 1-200"),
		),
		mcp.WithNumber("hours_old",
			mcp.Description("Posting age cutoff in hours, 1-168"),
		),
		mcp.WithString("status",
			mcp.Description("Status assigned to inserted rows (default: new)"),
		),
		mcp.WithBoolean("require_description",
			mcp.Description("Skip records with an empty description (default: true)"),
		),
		mcp.WithString("preflight_host",
			mcp.Description("Host resolved before fetching (default: www.linkedin.com)"),
		),
		mcp.WithNumber("retry_count",
			mcp.Description("DNS preflight attempts, 1-10 (default: 3)"),
		),
		mcp.WithNumber("retry_sleep",
			mcp.Description("Base preflight retry delay in seconds, 0-300 (default: 30)"),
		),
		mcp.WithNumber("retry_backoff",
			mcp.Description("Preflight delay multiplier per attempt, 1-10 (default: 2)"),
		),
		mcp.WithBoolean("save_capture_json",
			mcp.Description("Write the raw per-term capture artifact (default: true)"),
		),
		mcp.WithString("capture_dir",
			mcp.Description("Directory for capture artifacts"),
		),
		mcp.WithString("db_path",
			mcp.Description("Database path override"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Fetch and report without writing the database or captures"),
		),
	)
}

// createBulkReadNewJobsTool returns the bulk_read_new_jobs tool definition
func createBulkReadNewJobsTool() mcp.Tool {
	return mcp.NewTool("bulk_read_new_jobs",
		mcp.WithDescription("Page through jobs with status 'new', newest capture first. Returns an opaque next_cursor while more rows remain."),
		mcp.WithNumber("limit",
			mcp.Description("Page size, 1-1000 (default: 50)"),
		),
		mcp.WithString("cursor",
			mcp.Description("Opaque cursor from a previous page"),
		),
		mcp.WithString("db_path",
			mcp.Description("Database path override"),
		),
	)
}

// createBulkUpdateJobStatusTool returns the bulk_update_job_status tool definition
func createBulkUpdateJobStatusTool() mcp.Tool {
	return mcp.NewTool("bulk_update_job_status",
		mcp.WithDescription("Set the status of up to 100 jobs in one transaction. The batch is all-or-nothing: any invalid status, duplicate id, or unknown id aborts every update."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Jobs to update"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":     map[string]any{"type": "integer", "description": "Database row id"},
					"status": map[string]any{"type": "string", "description": "Target status: new, shortlist, reviewed, reject, resume_written, applied, ghosted"},
				},
				"required": []string{"id", "status"},
			}),
		),
		mcp.WithString("db_path",
			mcp.Description("Database path override"),
		),
	)
}

// createInitializeShortlistTrackersTool returns the initialize_shortlist_trackers tool definition
func createInitializeShortlistTrackersTool() mcp.Tool {
	return mcp.NewTool("initialize_shortlist_trackers",
		mcp.WithDescription("Project shortlisted jobs into tracker markdown files and scaffold their application workspaces. Existing trackers are skipped unless force is set; items are isolated."),
		mcp.WithNumber("limit",
			mcp.Description("Shortlisted jobs to process, newest first, 1-1000 (default: 20)"),
		),
		mcp.WithString("trackers_dir",
			mcp.Description("Tracker directory override"),
		),
		mcp.WithString("applications_dir",
			mcp.Description("Applications directory override"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite trackers that already exist"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Plan without writing files"),
		),
		mcp.WithString("db_path",
			mcp.Description("Database path override"),
		),
	)
}

// createUpdateTrackerStatusTool returns the update_tracker_status tool definition
func createUpdateTrackerStatusTool() mcp.Tool {
	return mcp.NewTool("update_tracker_status",
		mcp.WithDescription("Move one tracker through the status policy. A 'Resume Written' target always re-runs the resume guardrails; force overrides the policy but never the guardrails."),
		mcp.WithString("tracker_path",
			mcp.Required(),
			mcp.Description("Tracker file path"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("Target status: Reviewed, Resume Written, Applied, Interview, Offer, Rejected, Ghosted"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Apply a transition the policy would block"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report the transition without writing the file"),
		),
	)
}

// createCareerTailorTool returns the career_tailor tool definition
func createCareerTailorTool() mcp.Tool {
	return mcp.NewTool("career_tailor",
		mcp.WithDescription("Build per-application artifacts for tracked jobs: the workspace, resume.tex from the template, a regenerated ai_context.md, and a compiled resume.pdf. Compiled output still carrying template placeholders fails the item unless force is set; forced output is reported with a warning and finalize_resume_batch will block it until the placeholders are replaced. Nothing here writes the database or tracker statuses."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Trackers to tailor"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tracker_path": map[string]any{"type": "string", "description": "Tracker file path"},
					"job_db_id":    map[string]any{"type": "integer", "description": "Database row id; overrides the tracker's job_db_id"},
				},
				"required": []string{"tracker_path"},
			}),
		),
		mcp.WithBoolean("force",
			mcp.Description("Overwrite an existing resume.tex and let placeholder-bearing output through"),
		),
		mcp.WithString("resume_template",
			mcp.Description("Resume template path override"),
		),
		mcp.WithString("full_resume",
			mcp.Description("Full resume markdown path override"),
		),
		mcp.WithString("applications_dir",
			mcp.Description("Applications directory override"),
		),
		mcp.WithString("pdflatex_cmd",
			mcp.Description("LaTeX compile command override; shell metacharacters are rejected"),
		),
	)
}

// createFinalizeResumeBatchTool returns the finalize_resume_batch tool definition
func createFinalizeResumeBatchTool() mcp.Tool {
	return mcp.NewTool("finalize_resume_batch",
		mcp.WithDescription("Commit tailored applications: the database row moves to 'resume_written' first, then the tracker projection follows; when the tracker write fails the row falls back to 'reviewed' with the failure in last_error. The resume guardrails always run and there is no force here. Items are isolated and share one run id."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Applications to finalize"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":              map[string]any{"type": "integer", "description": "Database row id"},
					"tracker_path":    map[string]any{"type": "string", "description": "Tracker file path"},
					"resume_pdf_path": map[string]any{"type": "string", "description": "Compiled resume path; overrides the tracker's resume_path"},
				},
				"required": []string{"id", "tracker_path"},
			}),
		),
		mcp.WithString("run_id",
			mcp.Description("Run id recorded on every row (default: generated)"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Validate and report without writing"),
		),
		mcp.WithString("db_path",
			mcp.Description("Database path override"),
		),
	)
}
