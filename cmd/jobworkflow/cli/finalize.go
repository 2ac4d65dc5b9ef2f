package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobworkflow/internal/ops"

	"github.com/spf13/cobra"
)

var (
	finalizeRunID  string
	finalizeDryRun bool
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <id:tracker-path> [<id:tracker-path>...]",
	Short: "Commit tailored applications",
	Long:  "Phase two of finalization: verifies each compiled resume, marks the job resume_written in the database, then rewrites the tracker status. A tracker failure after the database commit rolls the row back to reviewed with the error recorded. There is no force; placeholder and artifact guardrails always run.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFinalize,
}

func init() {
	finalizeCmd.Flags().StringVar(&finalizeRunID, "run-id", "", "audit run id (default generated)")
	finalizeCmd.Flags().BoolVar(&finalizeDryRun, "dry-run", false, "run every guardrail without writing")
	rootCmd.AddCommand(finalizeCmd)
}

func runFinalize(cmd *cobra.Command, args []string) error {
	items, err := parseFinalizeArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	o := ops.New(cfg, nil)
	res, err := o.FinalizeResumeBatch(cmd.Context(), ops.FinalizeRequest{
		Items:  items,
		RunID:  finalizeRunID,
		DryRun: finalizeDryRun,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	for _, r := range res.Results {
		if r.Success {
			fmt.Printf("  %-14s job %v  %s\n", r.Action, r.ID, r.TrackerPath)
		} else {
			fmt.Printf("  %-14s job %v: %s\n", r.Action, r.ID, r.Error)
		}
	}
	fmt.Printf("Run %s: finalized %d, failed %d\n", res.RunID, res.FinalizedCount, res.FailedCount)
	return nil
}

// parseFinalizeArgs turns id:tracker-path pairs into batch items. The
// split is on the first colon; tracker paths may contain colons only
// after that point.
func parseFinalizeArgs(args []string) ([]ops.FinalizeItem, error) {
	items := make([]ops.FinalizeItem, 0, len(args))
	for _, arg := range args {
		i := strings.Index(arg, ":")
		if i <= 0 || i == len(arg)-1 {
			return nil, fmt.Errorf("invalid argument %q, want id:tracker-path", arg)
		}
		items = append(items, ops.FinalizeItem{
			ID:          json.Number(arg[:i]),
			TrackerPath: arg[i+1:],
		})
	}
	return items, nil
}
