package cli

import (
	"fmt"
	"strings"

	"jobworkflow/internal/ops"

	"github.com/spf13/cobra"
)

var (
	queueLimit  int
	queueCursor string
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List new jobs awaiting triage",
	RunE:  runQueue,
}

func init() {
	queueCmd.Flags().IntVar(&queueLimit, "limit", 0, "page size, 1-1000 (default 50)")
	queueCmd.Flags().StringVar(&queueCursor, "cursor", "", "resume from an opaque page cursor")
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req := ops.ReadNewRequest{Limit: queueLimit}
	if queueCursor != "" {
		req.Cursor = &queueCursor
	}
	o := ops.New(cfg, nil)
	res, err := o.BulkReadNewJobs(cmd.Context(), req)
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	if res.Count == 0 {
		fmt.Println("Queue is empty. Run 'jobworkflow scrape' to fetch postings.")
		return nil
	}

	fmt.Printf("%-6s %-22s %-44s %-20s %s\n", "ID", "COMPANY", "TITLE", "LOCATION", "CAPTURED")
	fmt.Println(strings.Repeat("-", 110))
	for _, j := range res.Jobs {
		fmt.Printf("%-6d %-22s %-44s %-20s %s\n",
			j.ID, clip(j.Company, 22), clip(j.Title, 44), clip(j.Location, 20), j.CapturedAt)
	}
	fmt.Printf("Total: %d jobs\n", res.Count)
	if res.HasMore && res.NextCursor != nil {
		fmt.Printf("More available: jobworkflow queue --cursor %s\n", *res.NextCursor)
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
