// Package action implements the fixed, ordered side-effecting stages
// (print, exec, copy, unlink) applied to every entry the filter pipeline
// accepts.
package action

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/stats"
)

// Config is the subset of the run's Config that drives the action pipeline.
type Config struct {
	PrintDisabled bool
	JSONOutput    bool
	Print0        bool
	StatAll       bool

	ExecCmdLine []string

	CopyDestDir        string
	CopyTimeUpdate     bool
	IgnoreCopyErrors   bool
	Verify             bool
	BWLimiter          *rate.Limiter

	UnlinkFiles         bool
	IgnoreUnlinkErrors  bool
}

// Pipeline runs the fixed print->exec->copy->unlink sequence for every
// accepted entry and tracks whether any unignored error occurred, which the
// supervisor folds into the process exit code.
type Pipeline struct {
	Config   Config
	Writer   *Writer
	Counters *stats.Counters
	Logger   *slog.Logger
	Fatal    *fatal.Signal

	nonZero atomic.Bool
}

// NewPipeline constructs a Pipeline ready to Apply.
func NewPipeline(cfg Config, w *Writer, counters *stats.Counters, logger *slog.Logger, sig *fatal.Signal) *Pipeline {
	return &Pipeline{Config: cfg, Writer: w, Counters: counters, Logger: logger, Fatal: sig}
}

// ExitNonZero reports whether an unignored copy/unlink error (or an exec
// failure) occurred during the run.
func (p *Pipeline) ExitNonZero() bool {
	return p.nonZero.Load()
}

// Apply runs every configured stage against r in the fixed order defined by
// §4.D, incrementing filterMatches on completion regardless of whether any
// individual stage failed (errors are recorded, not escalated into skipping
// later stages).
func (p *Pipeline) Apply(ctx context.Context, scanRoot string, r Record) {
	if !p.Config.PrintDisabled {
		if err := Print(p.Writer, r, p.Config.JSONOutput, p.Config.Print0, p.Config.StatAll); err != nil {
			p.Logger.Error("print failed", "path", r.Path, "error", err)
		}
	}

	if len(p.Config.ExecCmdLine) > 0 {
		if err := Exec(ctx, p.Writer, p.Config.ExecCmdLine, r.Path, p.Fatal, p.Logger); err != nil {
			p.Logger.Error("exec failed", "path", r.Path, "error", err)
			p.nonZero.Store(true)
		}
	}

	if p.Config.CopyDestDir != "" {
		copyCfg := CopyConfig{
			DestDir:    p.Config.CopyDestDir,
			TimeUpdate: p.Config.CopyTimeUpdate,
			Verify:     p.Config.Verify,
			BWLimiter:  p.Config.BWLimiter,
		}
		if err := Copy(ctx, scanRoot, r, copyCfg, p.Counters, p.Logger); err != nil {
			p.Logger.Error("copy failed", "path", r.Path, "error", err)
			if !p.Config.IgnoreCopyErrors {
				p.nonZero.Store(true)
			}
		}
	}

	if p.Config.UnlinkFiles {
		if err := Unlink(r, p.Counters); err != nil {
			p.Logger.Error("unlink failed", "path", r.Path, "error", err)
			if !p.Config.IgnoreUnlinkErrors {
				p.nonZero.Store(true)
			}
		}
	}

	p.Counters.FilterMatches.Add(1)
}
