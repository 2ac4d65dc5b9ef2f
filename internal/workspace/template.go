package workspace

import (
	"os"

	"jobworkflow/internal/atomicfile"
	"jobworkflow/internal/toolerr"
)

// TemplateAction describes what MaterializeTemplate did with the target.
type TemplateAction string

const (
	TemplateCreated     TemplateAction = "created"
	TemplatePreserved   TemplateAction = "preserved"
	TemplateOverwritten TemplateAction = "overwritten"
)

// MaterializeTemplate copies the resume template to dest. An existing dest
// is preserved unless force is set; tailored content is never clobbered by
// accident. The copy is atomic.
func MaterializeTemplate(templatePath, dest string, force bool) (TemplateAction, error) {
	_, err := os.Stat(dest)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return "", toolerr.Internal("stat %s: %v", dest, err)
	}
	if exists && !force {
		return TemplatePreserved, nil
	}

	data, err := readTemplate(templatePath)
	if err != nil {
		return "", err
	}
	if err := atomicfile.WriteFile(dest, data, 0o644); err != nil {
		return "", toolerr.Internal("write resume source: %v", err)
	}
	if exists {
		return TemplateOverwritten, nil
	}
	return TemplateCreated, nil
}

func readTemplate(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, toolerr.TemplateNotFound("resume template not found: %s", path)
		}
		return nil, toolerr.Internal("stat resume template: %v", err)
	}
	if !info.Mode().IsRegular() {
		return nil, toolerr.TemplateNotFound("resume template is not a regular file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, toolerr.Internal("read resume template: %v", err)
	}
	return data, nil
}
