// Package walker implements the per-directory scan step (§4.E): open a
// directory, resolve and filter each entry, run the action pipeline on
// matches, and dispatch subdirectories to either immediate recursion or the
// shared work stack depending on current stack depth.
package walker

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/parafind/parafind/internal/action"
	"github.com/parafind/parafind/internal/config"
	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/filter"
	"github.com/parafind/parafind/internal/stack"
	"github.com/parafind/parafind/internal/stats"
)

// Walker holds everything a single scan call needs. It is shared read-only
// by every worker goroutine; none of its fields are mutated after
// construction.
type Walker struct {
	Config   *config.Config
	Filter   *filter.Pipeline
	Actions  *action.Pipeline
	Stack    *stack.Stack
	Counters *stats.Counters
	Fatal    *fatal.Signal
	Logger   *slog.Logger

	// ScanRoot is the single scan path RelativePath strips when computing
	// a --copyto destination. Only meaningful when CopyDestDir is set,
	// in which case Config.Validate has already enforced a single path.
	ScanRoot string
}

// Scan processes one directory: it opens dirPath, resolves and filters each
// entry, applies the action pipeline to matches, and either recurses
// in-place or pushes subdirectories onto the shared stack, per the
// breadth/depth switch in §4.E.
func (w *Walker) Scan(ctx context.Context, dirPath string, dirDepth uint16) {
	if w.Fatal.Triggered() {
		return
	}
	if w.Config.QuitAfterFirstMatch && w.Counters.FilterMatches.Load() > 0 {
		return
	}

	dir, err := os.Open(dirPath)
	if err != nil {
		w.Counters.Errors.Add(1)
		w.Logger.Warn("open directory failed", "path", dirPath, "error", err)
		if !isRecoverableOpenErr(err) {
			w.Fatal.Trigger()
		}
		return
	}
	defer dir.Close()

	entries, readErr := dir.ReadDir(-1)
	for _, de := range entries {
		w.processEntry(ctx, dir, dirPath, de, dirDepth)
	}

	if readErr != nil {
		w.Counters.Errors.Add(1)
		w.Logger.Warn("readdir failed", "path", dirPath, "error", readErr)
	}
}

func (w *Walker) processEntry(ctx context.Context, dir *os.File, dirPath string, de fs.DirEntry, dirDepth uint16) {
	name := de.Name()
	entryPath := joinPath(dirPath, name)

	resolved := entrytype.Resolve(int(dir.Fd()), name, de.Type(), w.Config.StatAll)
	if resolved.HintWasUnknown {
		w.Counters.Unknowns.Add(1)
	}
	if resolved.Stat != nil {
		w.Counters.StatCalls.Add(1)
	}
	if resolved.StatErr != nil {
		w.Counters.Errors.Add(1)
		w.Logger.Warn("stat failed", "path", entryPath, "error", resolved.StatErr)
	}

	if w.Config.CheckACLs {
		checkACLs(entryPath, resolved.Type == entrytype.DIR, w.Counters, w.Logger)
	}

	if resolved.Type == entrytype.DIR {
		w.Counters.Dirs.Add(1)
	} else {
		w.Counters.Files.Add(1)
	}

	accept, needsDiagnostic := w.Filter.Match(filter.Entry{
		Path: entryPath,
		Base: name,
		Type: resolved.Type,
		Stat: resolved.Stat,
	})
	if needsDiagnostic {
		w.Logger.Warn("entry type could not be resolved for --type match", "path", entryPath)
	}
	if accept {
		w.Actions.Apply(ctx, w.ScanRoot, action.Record{Path: entryPath, Type: resolved.Type, Stat: resolved.Stat})
	}

	if resolved.Type == entrytype.DIR {
		w.maybeDescend(ctx, entryPath, resolved, dirDepth)
	}
}

func (w *Walker) maybeDescend(ctx context.Context, entryPath string, resolved entrytype.Entry, dirDepth uint16) {
	if dirDepth >= w.Config.MaxDirDepth {
		return
	}
	if w.Config.FilterMountID != nil {
		if resolved.Stat == nil || resolved.Stat.Dev != *w.Config.FilterMountID {
			return
		}
	}

	childDepth := dirDepth + 1
	if w.Stack.Size() >= w.Config.GodeepThreshold {
		w.Scan(ctx, entryPath, childDepth)
		return
	}
	w.Stack.Push(entryPath, childDepth)
}

// isRecoverableOpenErr reports whether a directory-open failure is an
// ordinary per-entry condition (permission denied, removed between readdir
// and open) rather than something indicating the run can no longer make
// progress.
func isRecoverableOpenErr(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist)
}
