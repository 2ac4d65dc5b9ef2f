package cli

import (
	"fmt"

	"jobworkflow/internal/ops"

	"github.com/spf13/cobra"
)

var (
	trackersInitLimit  int
	trackersInitForce  bool
	trackersInitDryRun bool
	trackersSetForce   bool
	trackersSetDryRun  bool
)

var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "Manage application tracker files",
}

var trackersInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create trackers for shortlisted jobs",
	Long:  "Projects shortlisted rows into markdown tracker files and plans their application workspaces. Existing trackers are skipped unless --force.",
	RunE:  runTrackersInit,
}

var trackersSetCmd = &cobra.Command{
	Use:   "set <tracker-path> <status>",
	Short: "Advance a tracker through the application pipeline",
	Long:  "Moves a tracker to a new workflow status. Backward moves and artifact-gated targets are refused unless --force; the resume guardrail for Resume Written cannot be forced.",
	Args:  cobra.ExactArgs(2),
	RunE:  runTrackersSet,
}

func init() {
	trackersInitCmd.Flags().IntVar(&trackersInitLimit, "limit", 0, "shortlisted jobs to process, 1-1000 (default 20)")
	trackersInitCmd.Flags().BoolVar(&trackersInitForce, "force", false, "overwrite existing trackers")
	trackersInitCmd.Flags().BoolVar(&trackersInitDryRun, "dry-run", false, "report what would happen without writing")
	trackersSetCmd.Flags().BoolVar(&trackersSetForce, "force", false, "allow backward or artifact-gated moves")
	trackersSetCmd.Flags().BoolVar(&trackersSetDryRun, "dry-run", false, "validate the move without writing")
	trackersCmd.AddCommand(trackersInitCmd)
	trackersCmd.AddCommand(trackersSetCmd)
	rootCmd.AddCommand(trackersCmd)
}

func runTrackersInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	o := ops.New(cfg, nil)
	res, err := o.InitializeShortlistTrackers(cmd.Context(), ops.InitTrackersRequest{
		Limit:  trackersInitLimit,
		Force:  trackersInitForce,
		DryRun: trackersInitDryRun,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	for _, r := range res.Results {
		if r.TrackerPath != "" {
			fmt.Printf("  %-12s %s\n", r.Action, r.TrackerPath)
		} else {
			fmt.Printf("  %-12s job %d: %s\n", r.Action, r.ID, r.Error)
		}
	}
	fmt.Printf("Created %d, skipped %d, overwritten %d, failed %d\n",
		res.CreatedCount, res.SkippedCount, res.OverwrittenCount, res.FailedCount)
	return nil
}

func runTrackersSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	o := ops.New(cfg, nil)
	res, err := o.UpdateTrackerStatus(cmd.Context(), ops.TrackerStatusRequest{
		TrackerPath: args[0],
		Status:      args[1],
		Force:       trackersSetForce,
		DryRun:      trackersSetDryRun,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}
	fmt.Printf("%s: %s → %s (%s)\n", res.TrackerPath, res.PreviousStatus, res.NewStatus, res.Action)
	return nil
}
