package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobworkflow/internal/ops"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <id:status> [<id:status>...]",
	Short: "Move jobs to a new status",
	Long:  "Applies a batch of id:status pairs atomically: either every job moves or none does. Statuses: new, shortlist, reviewed, reject, resume_written, applied, ghosted.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	items, err := parseUpdateArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	o := ops.New(cfg, nil)
	res, err := o.BulkUpdateJobStatus(cmd.Context(), ops.UpdateStatusRequest{Items: items})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	for _, r := range res.Results {
		if r.Success {
			fmt.Printf("  job %v updated\n", r.ID)
		} else {
			fmt.Printf("  job %v FAILED: %s\n", r.ID, r.Error)
		}
	}
	fmt.Printf("Updated %d, failed %d\n", res.UpdatedCount, res.FailedCount)
	return nil
}

// parseUpdateArgs turns id:status pairs into batch items. Ids and
// statuses are validated by the op, not here; this only splits.
func parseUpdateArgs(args []string) ([]ops.UpdateStatusItem, error) {
	items := make([]ops.UpdateStatusItem, 0, len(args))
	for _, arg := range args {
		i := strings.Index(arg, ":")
		if i <= 0 || i == len(arg)-1 {
			return nil, fmt.Errorf("invalid argument %q, want id:status", arg)
		}
		items = append(items, ops.UpdateStatusItem{
			ID:     json.Number(arg[:i]),
			Status: arg[i+1:],
		})
	}
	return items, nil
}
