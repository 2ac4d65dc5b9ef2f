package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"jobworkflow/internal/ops"
	"jobworkflow/internal/toolerr"
)

// bindArguments re-encodes the raw argument map and decodes it strictly,
// so unknown keys fail with VALIDATION_ERROR on every surface.
func bindArguments(req mcp.CallToolRequest, v any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return toolerr.Validation("encode arguments: %v", err)
	}
	return ops.DecodeStrict(raw, v)
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(toolerr.Internal("encode result: %v", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
	}
}

// errorResult renders a taxonomy error as a JSON tool result. The Go
// error stays nil in the handlers so the client sees the structured
// payload instead of a transport fault.
func errorResult(err error) *mcp.CallToolResult {
	te := toolerr.From(err)
	data, merr := json.MarshalIndent(map[string]any{"error": te}, "", "  ")
	if merr != nil {
		data = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal error: encoding failure","retryable":true}}`)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: true,
	}
}

func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	te := toolerr.From(err)
	slog.Warn("tool call failed", "tool", tool, "code", te.Code, "error", te.Message)
	return errorResult(te)
}

func (s *Server) handleScrapeJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.ScrapeRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("scrape_jobs", err), nil
	}
	res, err := s.ops.ScrapeJobs(ctx, args)
	if err != nil {
		return s.toolError("scrape_jobs", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleBulkReadNewJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.ReadNewRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("bulk_read_new_jobs", err), nil
	}
	res, err := s.ops.BulkReadNewJobs(ctx, args)
	if err != nil {
		return s.toolError("bulk_read_new_jobs", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleBulkUpdateJobStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.UpdateStatusRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("bulk_update_job_status", err), nil
	}
	res, err := s.ops.BulkUpdateJobStatus(ctx, args)
	if err != nil {
		return s.toolError("bulk_update_job_status", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleInitializeShortlistTrackers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.InitTrackersRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("initialize_shortlist_trackers", err), nil
	}
	res, err := s.ops.InitializeShortlistTrackers(ctx, args)
	if err != nil {
		return s.toolError("initialize_shortlist_trackers", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleUpdateTrackerStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.TrackerStatusRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("update_tracker_status", err), nil
	}
	res, err := s.ops.UpdateTrackerStatus(ctx, args)
	if err != nil {
		return s.toolError("update_tracker_status", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleCareerTailor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.TailorRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("career_tailor", err), nil
	}
	res, err := s.ops.CareerTailor(ctx, args)
	if err != nil {
		return s.toolError("career_tailor", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) handleFinalizeResumeBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ops.FinalizeRequest
	if err := bindArguments(req, &args); err != nil {
		return s.toolError("finalize_resume_batch", err), nil
	}
	res, err := s.ops.FinalizeResumeBatch(ctx, args)
	if err != nil {
		return s.toolError("finalize_resume_batch", err), nil
	}
	return jsonResult(res), nil
}
