// Package tracker reads and writes the markdown tracker documents that
// project shortlisted jobs for human editing. A tracker is YAML frontmatter
// between --- fences followed by a markdown body with a Job Description
// section. The database stays authoritative; trackers are a projection.
package tracker

import (
	"bytes"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"jobworkflow/internal/toolerr"
)

// Document is a parsed tracker file. Status carries the raw frontmatter
// value, which may be arbitrary text in a hand-edited file.
type Document struct {
	Frontmatter map[string]any
	Body        string
	Status      string
}

var (
	fenceOpen  = []byte("---\n")
	fenceClose = []byte("\n---\n")

	jobDescriptionRe = regexp.MustCompile(`(?mi)^##\s*job\s+description\s*$`)
	headingRe        = regexp.MustCompile(`(?m)^#`)
)

// ParseFile stats and reads the tracker at path. A missing or non-regular
// path is FILE_NOT_FOUND; malformed content is VALIDATION_ERROR.
func ParseFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, toolerr.FileNotFound("tracker not found: %s", path)
		}
		return nil, toolerr.Internal("stat tracker: %v", err)
	}
	if !info.Mode().IsRegular() {
		return nil, toolerr.FileNotFound("tracker is not a regular file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, toolerr.Internal("read tracker: %v", err)
	}
	return Parse(data)
}

// Parse splits content into frontmatter and body. The document must open
// with a --- fence on the first line and close with a --- fence on its own
// line; the frontmatter must be a YAML mapping carrying a status key.
func Parse(content []byte) (*Document, error) {
	if !bytes.HasPrefix(content, fenceOpen) {
		return nil, toolerr.Validation("tracker missing frontmatter delimiters")
	}
	rest := content[len(fenceOpen):]
	end := bytes.Index(rest, fenceClose)
	if end < 0 {
		return nil, toolerr.Validation("tracker missing frontmatter delimiters")
	}
	meta := rest[:end]
	body := rest[end+len(fenceClose):]

	var fm map[string]any
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return nil, toolerr.Validation("tracker frontmatter is not valid YAML: %v", err)
	}
	if fm == nil {
		return nil, toolerr.Validation("tracker frontmatter is not a mapping")
	}
	raw, ok := fm["status"]
	if !ok {
		return nil, toolerr.Validation("tracker frontmatter missing status")
	}
	status, ok := raw.(string)
	if !ok {
		return nil, toolerr.Validation("tracker frontmatter status is not a string")
	}
	return &Document{Frontmatter: fm, Body: string(body), Status: strings.TrimSpace(status)}, nil
}

// JobDescription extracts the text under the Job Description heading, up to
// the next heading line.
func (d *Document) JobDescription() (string, error) {
	loc := jobDescriptionRe.FindStringIndex(d.Body)
	if loc == nil {
		return "", toolerr.Validation("tracker missing '## Job Description' section")
	}
	rest := d.Body[loc[1]:]
	if next := headingRe.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return strings.TrimSpace(rest), nil
}

// StringField returns the trimmed string value for key, or "" when the key
// is absent or not a string.
func (d *Document) StringField(key string) string {
	if v, ok := d.Frontmatter[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// IntField returns an integer frontmatter value, tolerating the numeric
// shapes YAML decoding produces plus digit strings from hand edits.
func (d *Document) IntField(key string) (int64, bool) {
	switch v := d.Frontmatter[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// StripWikiLink unwraps [[...]] link syntax; plain values pass through.
func StripWikiLink(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") && len(s) >= 4 {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	return s
}

// ResumePDFPath resolves the resume_path frontmatter field to a plain path.
func (d *Document) ResumePDFPath() (string, bool) {
	raw := d.StringField("resume_path")
	if raw == "" {
		return "", false
	}
	path := StripWikiLink(raw)
	if path == "" {
		return "", false
	}
	return path, true
}
