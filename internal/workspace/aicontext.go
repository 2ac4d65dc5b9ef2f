package workspace

import (
	"bytes"
	"fmt"
	"strings"

	"jobworkflow/internal/atomicfile"
	"jobworkflow/internal/toolerr"
)

// BuildAIContext assembles the ai_context.md dropped next to resume.tex:
// the job posting this application targets followed by the operator's full
// resume, so whoever tailors the TeX has both in one file.
func BuildAIContext(company, position, jobDescription, fullResume string) []byte {
	var b bytes.Buffer
	title := strings.TrimSpace(position)
	if title == "" {
		title = "Application"
	}
	if c := strings.TrimSpace(company); c != "" {
		title += " at " + c
	}
	fmt.Fprintf(&b, "# AI Context: %s\n\n", title)
	b.WriteString("## Job Description\n\n")
	b.WriteString(strings.TrimSpace(jobDescription))
	b.WriteString("\n\n## Full Resume\n\n")
	b.WriteString(strings.TrimSpace(fullResume))
	b.WriteString("\n")
	return b.Bytes()
}

// WriteAIContext renders and atomically writes the ai_context file for a
// workspace.
func (w Workspace) WriteAIContext(company, position, jobDescription, fullResume string) error {
	data := BuildAIContext(company, position, jobDescription, fullResume)
	if err := atomicfile.WriteFile(w.AIContext(), data, 0o644); err != nil {
		return toolerr.Internal("write ai_context: %v", err)
	}
	return nil
}
