// Package latex compiles resume sources with a pdflatex-style toolchain.
// The command line comes from config or a tool request, so it is parsed
// and validated before anything is executed.
package latex

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"jobworkflow/internal/toolerr"
)

// Compiler turns a TeX source into a PDF next to it.
type Compiler interface {
	Compile(ctx context.Context, texPath string) (output string, err error)
}

// Command is a validated toolchain invocation, e.g.
// "pdflatex -interaction=nonstopmode -halt-on-error".
type Command struct {
	args []string
}

// ParseCommand tokenizes and validates a pdflatex_cmd string. Shell
// metacharacters and shell executables are rejected; the command runs
// directly, never through a shell.
func ParseCommand(raw string) (*Command, error) {
	args, err := parseCompileCommand(raw)
	if err != nil {
		return nil, err
	}
	if err := validateCompileArgs(args); err != nil {
		return nil, err
	}
	return &Command{args: args}, nil
}

// Args returns a copy of the argv the command will run.
func (c *Command) Args() []string {
	return append([]string{}, c.args...)
}

// Compile runs the toolchain on texPath with the source directory as the
// working directory, appending the source filename as the final argument.
// Combined output comes back for logging either way.
func (c *Command) Compile(ctx context.Context, texPath string) (string, error) {
	args := append(append([]string{}, c.args[1:]...), filepath.Base(texPath))
	cmd := exec.CommandContext(ctx, c.args[0], args...)
	cmd.Dir = filepath.Dir(texPath)
	out, err := cmd.CombinedOutput()
	output := string(out)
	if err != nil {
		return output, toolerr.Compile("%s failed: %v: %s", c.args[0], err, errorLine(output))
	}
	return output, nil
}

// errorLine pulls the most useful line out of compiler output: the first
// "!" error marker pdflatex prints, else the last non-empty line.
func errorLine(output string) string {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "!") {
			return strings.TrimSpace(line)
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return "no output"
}
