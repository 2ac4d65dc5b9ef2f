package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"jobworkflow/internal/config"
	"jobworkflow/internal/db"
	"jobworkflow/internal/ops"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Root:            root,
		BaseDir:         root,
		DBPath:          filepath.Join(root, "jobs.db"),
		TrackersDir:     filepath.Join(root, "trackers"),
		ApplicationsDir: filepath.Join(root, "applications"),
		CaptureDir:      root,
		ServerName:      "jobworkflow",
	}
	return New(cfg, ops.New(cfg, nil))
}

func seedQueue(t *testing.T, s *Server, n int) {
	t.Helper()
	store, err := db.Open(s.cfg.DBPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	records := make([]db.CleanedRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, db.CleanedRecord{
			JobID:       fmt.Sprintf("70%02d", i),
			Title:       fmt.Sprintf("Engineer %d", i),
			Company:     "Initech",
			Description: "Build services.",
			URL:         fmt.Sprintf("https://www.linkedin.com/jobs/view/70%02d", i),
			Source:      "linkedin",
			CapturedAt:  db.Now(),
			PayloadJSON: "{}",
		})
	}
	if _, _, err := store.InsertCleaned(context.Background(), records, db.StatusNew, db.Now()); err != nil {
		t.Fatalf("seed queue: %v", err)
	}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content blocks = %d, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want text", res.Content[0])
	}
	return tc.Text
}

func errorPayloadOf(t *testing.T, res *mcp.CallToolResult) (code, message string, retryable bool) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("result not marked as error: %s", textOf(t, res))
	}
	var payload struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			Retryable bool   `json:"retryable"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(textOf(t, res)), &payload); err != nil {
		t.Fatalf("decode error payload: %v\n%s", err, textOf(t, res))
	}
	return payload.Error.Code, payload.Error.Message, payload.Error.Retryable
}

func TestToolDefinitions(t *testing.T) {
	t.Parallel()

	tools := []mcp.Tool{
		createScrapeJobsTool(),
		createBulkReadNewJobsTool(),
		createBulkUpdateJobStatusTool(),
		createInitializeShortlistTrackersTool(),
		createUpdateTrackerStatusTool(),
		createCareerTailorTool(),
		createFinalizeResumeBatchTool(),
	}
	want := []string{
		"scrape_jobs",
		"bulk_read_new_jobs",
		"bulk_update_job_status",
		"initialize_shortlist_trackers",
		"update_tracker_status",
		"career_tailor",
		"finalize_resume_batch",
	}
	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("tool[%d] name = %q, want %q", i, tool.Name, want[i])
		}
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}

	required := createUpdateTrackerStatusTool().InputSchema.Required
	for _, name := range []string{"tracker_path", "status"} {
		found := false
		for _, r := range required {
			if r == name {
				found = true
			}
		}
		if !found {
			t.Errorf("update_tracker_status: %q not required", name)
		}
	}
}

func TestHandleBulkReadNewJobs(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	seedQueue(t, s, 3)

	res, err := s.handleBulkReadNewJobs(context.Background(),
		callTool("bulk_read_new_jobs", map[string]any{"limit": 2}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textOf(t, res))
	}

	var out struct {
		Count      int              `json:"count"`
		HasMore    bool             `json:"has_more"`
		NextCursor *string          `json:"next_cursor"`
		Jobs       []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(textOf(t, res)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.Count != 2 || !out.HasMore || out.NextCursor == nil || len(out.Jobs) != 2 {
		t.Fatalf("result = %+v", out)
	}
}

func TestHandleBulkUpdateJobStatus(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	seedQueue(t, s, 2)

	// One numeric id and one quoted-numeric id; both forms are accepted.
	res, err := s.handleBulkUpdateJobStatus(context.Background(),
		callTool("bulk_update_job_status", map[string]any{
			"items": []any{
				map[string]any{"id": 1, "status": "shortlist"},
				map[string]any{"id": "2", "status": "reject"},
			},
		}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", textOf(t, res))
	}

	var out struct {
		UpdatedCount int `json:"updated_count"`
		FailedCount  int `json:"failed_count"`
	}
	if err := json.Unmarshal([]byte(textOf(t, res)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.UpdatedCount != 2 || out.FailedCount != 0 {
		t.Fatalf("result = %+v", out)
	}
}

func TestHandlerRejectsUnknownArgument(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.handleBulkReadNewJobs(context.Background(),
		callTool("bulk_read_new_jobs", map[string]any{"limt": 1}))
	if err != nil {
		t.Fatalf("handler returned a transport error: %v", err)
	}
	code, message, retryable := errorPayloadOf(t, res)
	if code != "VALIDATION_ERROR" || retryable {
		t.Fatalf("code = %q retryable = %v", code, retryable)
	}
	if !strings.Contains(message, "limt") {
		t.Fatalf("message = %q, want the offending key named", message)
	}
}

func TestHandlerMissingDatabase(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.handleBulkReadNewJobs(context.Background(),
		callTool("bulk_read_new_jobs", nil))
	if err != nil {
		t.Fatalf("handler returned a transport error: %v", err)
	}
	code, _, retryable := errorPayloadOf(t, res)
	if code != "DB_NOT_FOUND" || retryable {
		t.Fatalf("code = %q retryable = %v", code, retryable)
	}
}

func TestHandleUpdateTrackerStatusValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.handleUpdateTrackerStatus(context.Background(),
		callTool("update_tracker_status", map[string]any{"status": "Applied"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	code, message, _ := errorPayloadOf(t, res)
	if code != "VALIDATION_ERROR" || !strings.Contains(message, "tracker_path") {
		t.Fatalf("code = %q message = %q", code, message)
	}
}

func TestHandleScrapeJobsValidation(t *testing.T) {
	t.Parallel()

	// Range validation fires before the network is touched, so this
	// also proves string arrays survive the argument rebind.
	s := newTestServer(t)
	res, err := s.handleScrapeJobs(context.Background(),
		callTool("scrape_jobs", map[string]any{
			"terms":          []any{"backend engineer"},
			"results_wanted": 999,
		}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	code, message, _ := errorPayloadOf(t, res)
	if code != "VALIDATION_ERROR" || !strings.Contains(message, "results_wanted") {
		t.Fatalf("code = %q message = %q", code, message)
	}
}
