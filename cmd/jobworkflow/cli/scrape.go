package cli

import (
	"fmt"

	"jobworkflow/internal/ops"
	"jobworkflow/internal/source"

	"github.com/spf13/cobra"
)

var (
	scrapeTerms    []string
	scrapeLocation string
	scrapeSites    []string
	scrapeResults  int
	scrapeHours    int
	scrapeStatus   string
	scrapeDryRun   bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch postings into the queue",
	Long:  "Runs the scrape pipeline for each configured search term: fetch, clean, dedupe by URL, insert as new. Flags override the [scrape] config section.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeTerms, "terms", nil, "search terms (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeLocation, "location", "", "search location (default from config)")
	scrapeCmd.Flags().StringSliceVar(&scrapeSites, "sites", nil, "job boards to query (default from config)")
	scrapeCmd.Flags().IntVar(&scrapeResults, "results", 0, "results per term, 1-200 (default from config)")
	scrapeCmd.Flags().IntVar(&scrapeHours, "hours", 0, "posting age window in hours, 1-168 (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeStatus, "status", "", "initial status for inserted rows (default new)")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "print the plan without fetching or writing")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	o := ops.New(cfg, source.NewLinkedIn())
	res, err := o.ScrapeJobs(cmd.Context(), ops.ScrapeRequest{
		Terms:         scrapeTerms,
		Location:      scrapeLocation,
		Sites:         scrapeSites,
		ResultsWanted: scrapeResults,
		HoursOld:      scrapeHours,
		Status:        scrapeStatus,
		DryRun:        scrapeDryRun,
	})
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(res)
		return nil
	}

	if res.DryRun {
		fmt.Printf("Dry run %s — would scrape %d terms:\n", res.RunID, res.Totals.TermCount)
		for _, term := range res.Terms {
			fmt.Printf("  %s\n", term.Term)
		}
		return nil
	}

	for _, term := range res.Terms {
		if !term.Success {
			fmt.Printf("  %-40s FAILED: %s\n", term.Term, term.Error)
			continue
		}
		fmt.Printf("  %-40s fetched %d, inserted %d, duplicates %d\n",
			term.Term, term.FetchedCount, term.InsertedCount, term.DuplicateCount)
	}
	t := res.Totals
	fmt.Printf("Run %s: %d/%d terms ok, %d inserted, %d duplicates (%s)\n",
		res.RunID, t.SuccessfulTerms, t.TermCount, t.InsertedCount, t.DuplicateCount, res.Duration)
	return nil
}
