package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"jobworkflow/internal/db"

	"github.com/spf13/cobra"
)

var initRoot string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a workflow root",
	Long:  "Creates jobworkflow.toml, the data/trackers/applications/templates directories, starter resume templates, and the job database.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initRoot, "root", ".", "directory to scaffold")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(initRoot)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create root: %w", err)
	}

	// 1. Config file.
	cfgFile := filepath.Join(root, "jobworkflow.toml")
	if cfgPath != "" {
		cfgFile = cfgPath
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if err := os.WriteFile(cfgFile, []byte(configTemplate), 0o644); err != nil {
			return fmt.Errorf("write config template: %w", err)
		}
		fmt.Printf("Created config template: %s\n", cfgFile)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgFile)
	}

	// 2. Workflow directories.
	for _, dir := range []string{
		filepath.Join(root, "data", "capture"),
		filepath.Join(root, "trackers"),
		filepath.Join(root, "applications"),
		filepath.Join(root, "templates"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// 3. Starter templates. Existing files are never touched.
	texPath := filepath.Join(root, "templates", "resume.tex")
	if _, err := os.Stat(texPath); os.IsNotExist(err) {
		if err := os.WriteFile(texPath, []byte(resumeTexTemplate), 0o644); err != nil {
			return fmt.Errorf("write resume template: %w", err)
		}
		fmt.Printf("Created resume template: %s\n", texPath)
	}
	fullPath := filepath.Join(root, "templates", "full_resume.md")
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		if err := os.WriteFile(fullPath, []byte(fullResumeTemplate), 0o644); err != nil {
			return fmt.Errorf("write full resume: %w", err)
		}
		fmt.Printf("Created full resume: %s\n", fullPath)
	}

	// 4. Database schema.
	dbPath := filepath.Join(root, "data", "capture", "jobs.db")
	store, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	store.Close()
	fmt.Printf("Database initialized: %s\n", dbPath)

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s and templates/full_resume.md\n", filepath.Base(cfgFile))
	fmt.Printf("  2. Fill the queue:      jobworkflow scrape\n")
	fmt.Printf("  3. Triage it:           jobworkflow tui\n")
	fmt.Printf("  4. Serve to an agent:   jobworkflow serve\n")
	return nil
}

const configTemplate = `# jobworkflow configuration
#
# All relative paths resolve against "root", which itself resolves
# against this file's directory. Environment overrides:
# JOBWORKFLOW_ROOT, JOBWORKFLOW_DB, JOBWORKFLOW_SERVER_NAME.

root = "."
db_path = "data/capture/jobs.db"
trackers_dir = "trackers"
applications_dir = "applications"
capture_dir = "data/capture"
server_name = "jobworkflow"
log_level = "info"              # debug|info|warn|error

[scrape]
terms = ["ai engineer", "backend engineer", "machine learning"]
location = "Ontario, Canada"
sites = ["linkedin"]
results_wanted = 20             # per term, 1-200
hours_old = 2                   # posting age window, 1-168

[tailor]
resume_template = "templates/resume.tex"
full_resume = "templates/full_resume.md"
pdflatex_cmd = "pdflatex -interaction=nonstopmode -halt-on-error"
`

const resumeTexTemplate = `\documentclass[11pt]{article}
\usepackage[margin=1in]{geometry}
\usepackage{enumitem}
\setlist[itemize]{noitemsep,topsep=2pt}
\pagestyle{empty}

\begin{document}

\begin{center}
    {\LARGE Your Name}\\[2pt]
    you@example.com \quad github.com/you
\end{center}

\section*{Experience}
\textbf{Company} \hfill 2022--present\\
\textit{Role}
\begin{itemize}
    \item WORK-BULLET-POINT-1
    \item WORK-BULLET-POINT-2
\end{itemize}

\section*{Projects}
\begin{itemize}
    \item PROJECT-AI-1
    \item PROJECT-AI-2
    \item PROJECT-BE-1
\end{itemize}

\section*{Education}
\textbf{Your University} \hfill 2018--2022

\end{document}
`

const fullResumeTemplate = `# Full Resume

Everything about your experience, in full detail. The tailoring agent
reads this alongside each job description to pick what belongs in the
one-page resume.

## Experience

### Company — Role (2022–present)

- What you built, with numbers.
- What you owned.

## Projects

- Project one: what it does, what it is built with.

## Skills

Languages, frameworks, infrastructure.
`
