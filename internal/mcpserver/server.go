// Package mcpserver exposes the workflow operations as MCP tools over
// stdio. The transport is a thin shell: arguments are decoded strictly
// into the operation request types and results come back as JSON text
// content, so the tool surface and the CLI behave identically.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"jobworkflow/internal/config"
	"jobworkflow/internal/ops"
)

type Server struct {
	cfg *config.Config
	ops *ops.Ops
	mcp *server.MCPServer
}

func New(cfg *config.Config, o *ops.Ops) *Server {
	s := &Server{cfg: cfg, ops: o}

	m := server.NewMCPServer(cfg.ServerName, config.Version,
		server.WithToolCapabilities(true),
	)
	m.AddTool(createScrapeJobsTool(), s.handleScrapeJobs)
	m.AddTool(createBulkReadNewJobsTool(), s.handleBulkReadNewJobs)
	m.AddTool(createBulkUpdateJobStatusTool(), s.handleBulkUpdateJobStatus)
	m.AddTool(createInitializeShortlistTrackersTool(), s.handleInitializeShortlistTrackers)
	m.AddTool(createUpdateTrackerStatusTool(), s.handleUpdateTrackerStatus)
	m.AddTool(createCareerTailorTool(), s.handleCareerTailor)
	m.AddTool(createFinalizeResumeBatchTool(), s.handleFinalizeResumeBatch)
	s.mcp = m
	return s
}

// ServeStdio blocks serving MCP on stdin/stdout until the stream closes.
// Nothing else may write to stdout while this runs; logs go to stderr.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
