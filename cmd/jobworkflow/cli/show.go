package cli

import (
	"fmt"
	"strconv"
	"strings"

	"jobworkflow/internal/ops"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	showHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	showLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("37"))
	showRuleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.GetJob(cmd.Context(), id)
	if err != nil {
		return err
	}

	if jsonOut {
		printJSON(ops.JobView{
			ID:          job.ID,
			JobID:       job.JobID,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			Description: job.Description,
			URL:         job.URL,
			Source:      job.Source,
			Status:      string(job.Status),
			CapturedAt:  job.CapturedAt,
		})
		return nil
	}

	fmt.Println(showHeaderStyle.Render(fmt.Sprintf("JOB %d — %s @ %s", job.ID, job.Title, job.Company)))
	fmt.Println(showRuleStyle.Render(strings.Repeat("─", 72)))
	kv := func(k, v string) {
		if v != "" {
			fmt.Printf("%s %s\n", showLabelStyle.Render(fmt.Sprintf("%-10s", k)), v)
		}
	}
	kv("Status", string(job.Status))
	kv("Location", job.Location)
	kv("Source", job.Source)
	kv("URL", job.URL)
	kv("Captured", job.CapturedAt)
	kv("Resume", job.ResumePDFPath)
	if job.RunID != "" {
		kv("Run", fmt.Sprintf("%s (attempt %d)", job.RunID, job.AttemptCount))
	}
	kv("Last error", job.LastError)
	fmt.Println(showRuleStyle.Render(strings.Repeat("─", 72)))

	if job.Description == "" {
		fmt.Println("(no description captured)")
		return nil
	}
	fmt.Print(renderDescription(job.Description))
	return nil
}

// renderDescription renders markdown for the terminal, falling back to
// the raw text when glamour cannot.
func renderDescription(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text + "\n"
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return rendered
}
