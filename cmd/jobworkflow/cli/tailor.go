package cli

import (
	"fmt"

	"jobworkflow/internal/ops"

	"github.com/spf13/cobra"
)

var tailorForce bool

var tailorCmd = &cobra.Command{
	Use:   "tailor <tracker-path> [<tracker-path>...]",
	Short: "Build resume artifacts for trackers",
	Long:  "Phase one of finalization: creates each application workspace, materializes resume.tex from the template, regenerates ai_context.md, and compiles resume.pdf. Writes no database rows and no tracker statuses. A resume.tex still carrying template placeholders blocks compilation unless --force.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTailor,
}

func init() {
	tailorCmd.Flags().BoolVar(&tailorForce, "force", false, "overwrite an edited resume.tex and compile through placeholders")
	rootCmd.AddCommand(tailorCmd)
}

func runTailor(cmd *cobra.Command, args []string) error {
	items := make([]ops.TailorItem, len(args))
	for i, path := range args {
		items[i] = ops.TailorItem{TrackerPath: path}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	o := ops.New(cfg, nil)
	res, err := o.CareerTailor(cmd.Context(), ops.TailorRequest{Items: items, Force: tailorForce})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	for _, r := range res.Results {
		if r.Success {
			fmt.Printf("  ok     %s → %s\n", r.TrackerPath, r.ResumePDFPath)
		} else {
			fmt.Printf("  FAILED %s: %s\n", r.TrackerPath, r.Error)
		}
	}
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	fmt.Printf("Tailored %d, failed %d\n", res.SuccessCount, res.FailedCount)
	if len(res.SuccessfulItems) > 0 {
		fmt.Println("Next: edit each resume.tex, re-run tailor, then 'jobworkflow finalize'.")
	}
	return nil
}
