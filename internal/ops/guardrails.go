package ops

import (
	"os"
	"strings"

	"jobworkflow/internal/toolerr"
	"jobworkflow/internal/workspace"
)

// checkResumeArtifacts verifies the filesystem preconditions for a
// Resume Written transition: a non-empty resume.pdf, its companion
// resume.tex, and a tex source free of template placeholder tokens.
func checkResumeArtifacts(pdfPath string) error {
	info, err := os.Stat(pdfPath)
	if err != nil {
		return toolerr.FileNotFound("resume PDF not found at %s", pdfPath)
	}
	if info.Size() == 0 {
		return toolerr.Validation("resume PDF is empty at %s", pdfPath)
	}

	texPath := workspace.TexPathForPDF(pdfPath)
	data, err := os.ReadFile(texPath)
	if err != nil {
		return toolerr.FileNotFound("resume TeX not found at %s", texPath)
	}
	if found := workspace.FindPlaceholders(data); len(found) > 0 {
		return toolerr.Validation("resume TeX still contains template placeholders: %s",
			strings.Join(found, ", "))
	}
	return nil
}
