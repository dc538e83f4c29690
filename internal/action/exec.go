package action

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/parafind/parafind/internal/fatal"
)

// flusher is implemented by *os.File (via Sync) and lets Exec flush
// buffered stdout before handing control to the child process.
type flusher interface {
	Sync() error
}

// BuildExecLine substitutes every "{}" token in every argv element with
// path (all occurrences, per element), then shell-quotes each element with
// single quotes and joins them with spaces, ready for "/bin/sh -c".
func BuildExecLine(argv []string, path string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		substituted := strings.ReplaceAll(arg, "{}", path)
		parts[i] = shellQuote(substituted)
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Exec runs argv (after {} substitution) via the system shell for a single
// matched entry. If the child is killed by a signal, it logs a diagnostic
// and triggers the shared fatal signal, aborting the whole run.
func Exec(ctx context.Context, w *Writer, argv []string, path string, sig *fatal.Signal, logger *slog.Logger) error {
	if f, ok := w.w.(flusher); ok {
		_ = f.Sync()
	}

	line := BuildExecLine(argv, path)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", line)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if asExitError(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			logger.Error("exec child killed by signal", "path", path, "signal", status.Signal())
			sig.Trigger()
			return fmt.Errorf("exec %q killed by signal %s", line, status.Signal())
		}
		logger.Warn("exec child exited non-zero", "path", path, "exit_code", exitErr.ExitCode())
		return nil
	}
	return fmt.Errorf("exec %q: %w", line, err)
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = ee
	return true
}
