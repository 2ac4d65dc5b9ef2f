package tracker

import (
	"bytes"
	"os"
	"strconv"

	"jobworkflow/internal/atomicfile"
	"jobworkflow/internal/toolerr"
)

// SetStatusFile rewrites the status line of the tracker at path and leaves
// every other byte of the file untouched. The write goes through a temp
// file rename and keeps the original file mode.
func SetStatusFile(path string, status Status) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return toolerr.FileNotFound("tracker not found: %s", path)
		}
		return toolerr.Internal("stat tracker: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return toolerr.Internal("read tracker: %v", err)
	}
	updated, err := SetStatus(data, status)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return toolerr.Internal("write tracker: %v", err)
	}
	return nil
}

// SetStatus replaces the top-level status line inside the frontmatter
// fences. Hand-edited trackers carry arbitrary extra keys, comments, and
// spacing; none of that is reserialized.
func SetStatus(content []byte, status Status) ([]byte, error) {
	if !bytes.HasPrefix(content, fenceOpen) {
		return nil, toolerr.Validation("tracker missing frontmatter delimiters")
	}
	rest := content[len(fenceOpen):]
	end := bytes.Index(rest, fenceClose)
	if end < 0 {
		return nil, toolerr.Validation("tracker missing frontmatter delimiters")
	}
	meta := rest[:end]

	lines := bytes.Split(meta, []byte("\n"))
	replaced := false
	for i, line := range lines {
		// Indented lines are nested YAML, not the top-level status key.
		if !bytes.HasPrefix(line, []byte("status:")) {
			continue
		}
		lines[i] = []byte("status: " + string(status))
		replaced = true
		break
	}
	if !replaced {
		return nil, toolerr.Validation("tracker frontmatter missing status")
	}

	var buf bytes.Buffer
	buf.Write(fenceOpen)
	buf.Write(bytes.Join(lines, []byte("\n")))
	buf.Write(fenceClose)
	buf.Write(rest[end+len(fenceClose):])
	return buf.Bytes(), nil
}

// Filename returns the canonical tracker filename for a projected job:
// the capture day, the normalized company slug, and the database id.
func Filename(day, companySlug string, jobDBID int64) string {
	return day + "-" + companySlug + "-" + strconv.FormatInt(jobDBID, 10) + ".md"
}
