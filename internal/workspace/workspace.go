// Package workspace manages per-application directories under the
// applications root: the resume workspace that career tailoring compiles,
// plus the cover letter and CV subtrees the operator fills in by hand.
package workspace

import (
	"os"
	"path/filepath"

	"jobworkflow/internal/toolerr"
)

// Workspace points at one application's directory tree. Slug is the
// application slug, Dir the slug directory under the applications root.
type Workspace struct {
	Slug string
	Dir  string
}

func New(applicationsDir, slug string) Workspace {
	return Workspace{Slug: slug, Dir: filepath.Join(applicationsDir, slug)}
}

func (w Workspace) ResumeDir() string { return filepath.Join(w.Dir, "resume") }
func (w Workspace) CoverDir() string  { return filepath.Join(w.Dir, "cover") }
func (w Workspace) CVDir() string     { return filepath.Join(w.Dir, "cv") }

func (w Workspace) ResumeTex() string { return filepath.Join(w.ResumeDir(), "resume.tex") }
func (w Workspace) ResumePDF() string { return filepath.Join(w.ResumeDir(), "resume.pdf") }
func (w Workspace) AIContext() string { return filepath.Join(w.ResumeDir(), "ai_context.md") }

func (w Workspace) CoverLetterPDF() string {
	return filepath.Join(w.CoverDir(), "cover-letter.pdf")
}

// EnsureDirs creates the resume, cover, and cv subtrees. Existing
// directories are left alone.
func (w Workspace) EnsureDirs() error {
	for _, dir := range []string{w.ResumeDir(), w.CoverDir(), w.CVDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return toolerr.Internal("create workspace dir: %v", err)
		}
	}
	return nil
}

// TexPathForPDF maps a compiled resume PDF to its TeX source next to it.
func TexPathForPDF(pdfPath string) string {
	if ext := filepath.Ext(pdfPath); ext == ".pdf" {
		return pdfPath[:len(pdfPath)-len(ext)] + ".tex"
	}
	return filepath.Join(filepath.Dir(pdfPath), "resume.tex")
}
