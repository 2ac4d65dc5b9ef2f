// Package ops implements the workflow operations exposed by the tool
// server and the CLI: job ingestion, queue reads, bulk status updates,
// tracker projection, tracker transitions, and the two-phase resume
// finalize. Each operation takes a typed request struct and returns a
// typed result; request-shape problems surface as *toolerr.Error while
// per-item problems are recorded inside the result.
package ops

import (
	"context"
	"path/filepath"
	"time"

	"jobworkflow/internal/config"
	"jobworkflow/internal/latex"
	"jobworkflow/internal/source"
)

// Ops carries the configuration and collaborators shared by every
// operation. The function fields default to real implementations; tests
// swap them to stub DNS lookups, sleeps, clocks, and the LaTeX
// toolchain.
type Ops struct {
	cfg *config.Config
	src source.Source

	newCompiler func(command string) (latex.Compiler, error)
	lookupHost  source.LookupFunc
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

func New(cfg *config.Config, src source.Source) *Ops {
	return &Ops{
		cfg: cfg,
		src: src,
		newCompiler: func(command string) (latex.Compiler, error) {
			return latex.ParseCommand(command)
		},
		lookupHost: source.DefaultLookup,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// dbPath picks the database for a request: explicit override first,
// then the configured path (which already honors JOBWORKFLOW_DB and
// JOBWORKFLOW_ROOT).
func (o *Ops) dbPath(override string) string {
	if override == "" {
		return o.cfg.DBPath
	}
	return o.resolve(override)
}

// resolve anchors a relative request path at the workflow root rather
// than the process working directory.
func (o *Ops) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.cfg.Root, path)
}
