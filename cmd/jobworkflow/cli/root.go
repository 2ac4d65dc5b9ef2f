package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"jobworkflow/internal/config"
	"jobworkflow/internal/db"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
	jsonOut bool
	version = config.Version
	commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "jobworkflow",
	Short:   "Job application workflow engine",
	Long:    "jobworkflow scrapes postings into a local queue, projects shortlisted jobs into markdown trackers, and builds tailored resume artifacts — driven by an agent over MCP or directly from this CLI.",
	Version: fmt.Sprintf("%s (%s)", version, commit),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output JSON")
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

// resolveConfigPath determines which config file to use.
// Priority: --config flag > ./jobworkflow.toml > ~/.config/jobworkflow/config.toml.
// An empty result is fine: defaults cover the zero-config case.
func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	if _, err := os.Stat("jobworkflow.toml"); err == nil {
		return "jobworkflow.toml"
	}
	globalPath, err := config.GlobalConfigPath()
	if err == nil {
		if _, err := os.Stat(globalPath); err == nil {
			return globalPath
		}
	}
	return ""
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	// --verbose wins over the configured level.
	if !verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	}
	return cfg, nil
}

// openStore opens the configured database, requiring it to exist. Ops
// that ingest create the database themselves; everything else treats a
// missing file as a first-run error.
func openStore(cfg *config.Config) (*db.Store, error) {
	return db.OpenExisting(cfg.DBPath)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
