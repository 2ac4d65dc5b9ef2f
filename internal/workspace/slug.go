package workspace

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// Normalize lowercases text and collapses every run of characters outside
// [a-z0-9] into a single underscore, trimming underscores at both ends.
// Text that normalizes to nothing comes back as "query" so a slug always
// exists.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	pendingSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "query"
	}
	return b.String()
}

// ResolveSlug derives the application slug for a job. A resume_path that
// follows the canonical layout wins, so hand-moved workspaces keep working;
// otherwise the slug is rebuilt from the company and the database id, or
// from company plus position when no id is known.
func ResolveSlug(resumePath, company, position string, jobDBID int64) string {
	if slug, ok := SlugFromResumePath(resumePath); ok {
		return slug
	}
	if jobDBID > 0 {
		return Normalize(company) + "-" + strconv.FormatInt(jobDBID, 10)
	}
	return Normalize(company) + "-" + Normalize(position)
}

// SlugFromResumePath extracts the slug from a canonical resume path,
// <applications_dir>/<slug>/resume/resume.pdf, with or without wiki-link
// brackets around it.
func SlugFromResumePath(resumePath string) (string, bool) {
	p := strings.TrimSpace(resumePath)
	if strings.HasPrefix(p, "[[") && strings.HasSuffix(p, "]]") && len(p) >= 4 {
		p = strings.TrimSpace(p[2 : len(p)-2])
	}
	if p == "" {
		return "", false
	}
	p = filepath.ToSlash(p)
	const suffix = "/resume/resume.pdf"
	if !strings.HasSuffix(p, suffix) {
		return "", false
	}
	slug := path.Base(strings.TrimSuffix(p, suffix))
	if slug == "" || slug == "." || slug == "/" || slug == ".." {
		return "", false
	}
	return slug, true
}
