// Package supervisor implements the top-level run loop (§4.F): validate the
// config, seed every scan path, spawn the worker pool, join it, and surface
// the accumulated process exit code.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/parafind/parafind/internal/action"
	"github.com/parafind/parafind/internal/config"
	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/filter"
	"github.com/parafind/parafind/internal/stack"
	"github.com/parafind/parafind/internal/stats"
	"github.com/parafind/parafind/internal/walker"
)

// Supervisor owns the run-wide collaborators and drives a single scan from
// seed paths to exit code.
type Supervisor struct {
	Config   *config.Config
	Filter   *filter.Pipeline
	Actions  *action.Pipeline
	Counters *stats.Counters
	Fatal    *fatal.Signal
	Logger   *slog.Logger
}

// New constructs a Supervisor ready to Run.
func New(cfg *config.Config, f *filter.Pipeline, a *action.Pipeline, counters *stats.Counters, sig *fatal.Signal, logger *slog.Logger) *Supervisor {
	return &Supervisor{Config: cfg, Filter: f, Actions: a, Counters: counters, Fatal: sig, Logger: logger}
}

// Run validates the config, seeds every scan path, spawns NumThreads
// workers, joins them, emits the summary unless suppressed, and returns the
// process exit code (§4.F).
func (s *Supervisor) Run(ctx context.Context) int {
	if err := s.Config.Validate(); err != nil {
		s.Logger.Error("invalid configuration", "error", err)
		return 1
	}

	exitCode := 0
	st := stack.New(s.Config.NumThreads)
	scanRoot := singleScanRoot(s.Config)

	for _, path := range s.Config.ScanPaths {
		if s.Fatal.Triggered() {
			break
		}
		if !s.seedPath(ctx, st, scanRoot, path) {
			exitCode = 1
		}
	}

	w := &walker.Walker{
		Config:   s.Config,
		Filter:   s.Filter,
		Actions:  s.Actions,
		Stack:    st,
		Counters: s.Counters,
		Fatal:    s.Fatal,
		Logger:   s.Logger,
		ScanRoot: scanRoot,
	}

	var wg sync.WaitGroup
	for range s.Config.NumThreads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := st.PopWait()
				if !ok {
					return
				}
				w.Scan(ctx, item.Path, item.Depth)
			}
		}()
	}
	wg.Wait()

	if s.Actions.ExitNonZero() || s.Fatal.Triggered() {
		exitCode = 1
	}

	if s.Config.PrintSummary {
		fmt.Fprintln(os.Stderr, stats.Summary(s.Counters.Snapshot()))
	}

	return exitCode
}

// seedPath resolves, filters, and acts on a single scan-path root, then
// pushes it onto the stack at depth 1 when it is a directory within
// maxDirDepth. It reports false when the path could not be processed at
// all (an lstat failure).
func (s *Supervisor) seedPath(ctx context.Context, st *stack.Stack, scanRoot, path string) bool {
	resolved := entrytype.Resolve(unix.AT_FDCWD, path, entrytype.NoHint, true)
	if resolved.StatErr != nil {
		s.Counters.Errors.Add(1)
		s.Logger.Error("lstat failed", "path", path, "error", resolved.StatErr)
		if !isRecoverableErr(resolved.StatErr) {
			s.Fatal.Trigger()
		}
		return false
	}

	if resolved.Type == entrytype.DIR {
		s.Counters.Dirs.Add(1)
	} else {
		s.Counters.Files.Add(1)
	}

	accept, needsDiagnostic := s.Filter.Match(filter.Entry{
		Path: path,
		Base: filepath.Base(path),
		Type: resolved.Type,
		Stat: resolved.Stat,
	})
	if needsDiagnostic {
		s.Logger.Warn("entry type could not be resolved for --type match", "path", path)
	}
	if accept {
		s.Actions.Apply(ctx, scanRoot, action.Record{Path: path, Type: resolved.Type, Stat: resolved.Stat})
	}

	if resolved.Type == entrytype.DIR && s.Config.MaxDirDepth > 0 {
		st.Push(stripTrailingSlash(path), 1)
	}
	return true
}

// singleScanRoot returns the scan root RelativePath strips against when
// --copyto is set. Config.Validate already enforces exactly one scan path
// in that case.
func singleScanRoot(cfg *config.Config) string {
	if cfg.CopyDestDir == "" || len(cfg.ScanPaths) != 1 {
		return ""
	}
	return stripTrailingSlash(cfg.ScanPaths[0])
}

// stripTrailingSlash removes one trailing '/' from p, except from the
// string "/" itself, which has none to spare.
func stripTrailingSlash(p string) string {
	if p != "/" && strings.HasSuffix(p, "/") {
		return p[:len(p)-1]
	}
	return p
}

func isRecoverableErr(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist)
}
