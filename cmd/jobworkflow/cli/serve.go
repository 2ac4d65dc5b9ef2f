package cli

import (
	"log/slog"

	"jobworkflow/internal/mcpserver"
	"jobworkflow/internal/ops"
	"jobworkflow/internal/source"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server on stdio",
	Long:  "Serves the workflow tools over MCP stdio for an agent client. Protocol frames own stdout; all logging goes to stderr.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv := mcpserver.New(cfg, ops.New(cfg, source.NewLinkedIn()))
	slog.Info("serving MCP tools on stdio", "server", cfg.ServerName, "version", version)
	return srv.ServeStdio()
}
