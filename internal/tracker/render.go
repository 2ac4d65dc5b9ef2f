package tracker

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"jobworkflow/internal/toolerr"
)

// Fields is the frontmatter payload for a newly projected tracker.
type Fields struct {
	JobDBID         int64
	JobID           string
	Company         string
	Position        string
	Status          Status
	ApplicationDate string
	ReferenceLink   string
	ResumePath      string
	CoverLetterPath string
}

// frontmatter fixes the on-disk key order. yaml.Marshal emits struct fields
// in declaration order, which keeps rendered trackers diffable.
type frontmatter struct {
	JobDBID         int64  `yaml:"job_db_id"`
	JobID           string `yaml:"job_id"`
	Company         string `yaml:"company"`
	Position        string `yaml:"position"`
	Status          string `yaml:"status"`
	ApplicationDate string `yaml:"application_date"`
	ReferenceLink   string `yaml:"reference_link"`
	ResumePath      string `yaml:"resume_path"`
	CoverLetterPath string `yaml:"cover_letter_path"`
}

// Render produces a complete tracker document: stable frontmatter ordering,
// the Job Description section, and an empty Notes section.
func Render(f Fields, jobDescription string) ([]byte, error) {
	fm := frontmatter{
		JobDBID:         f.JobDBID,
		JobID:           f.JobID,
		Company:         f.Company,
		Position:        f.Position,
		Status:          string(f.Status),
		ApplicationDate: f.ApplicationDate,
		ReferenceLink:   f.ReferenceLink,
		ResumePath:      f.ResumePath,
		CoverLetterPath: f.CoverLetterPath,
	}
	data, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, toolerr.Internal("encode tracker frontmatter: %v", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n## Job Description\n\n")
	buf.WriteString(strings.TrimSpace(jobDescription))
	buf.WriteString("\n\n## Notes\n")
	return buf.Bytes(), nil
}
