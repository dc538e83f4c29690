package action

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/stats"
)

const (
	copyBufferSize     = 4 << 20  // 4 MiB, per the spec's fixed read/write loop.
	readlinkBufferSize = 16 << 10 // 16 KiB.
)

// CopyConfig configures the Copy action.
type CopyConfig struct {
	DestDir    string
	TimeUpdate bool
	Verify     bool
	BWLimiter  *rate.Limiter
}

// RelativePath computes the path of entryPath relative to scanRoot's
// directory component, independent of a trailing slash on scanRoot — the
// resolution of the open question in §9 about leading-slash destination
// components.
func RelativePath(scanRoot, entryPath string) string {
	root := scanRoot
	if root != "/" {
		root = strings.TrimSuffix(root, "/")
	}
	rel := strings.TrimPrefix(entryPath, root)
	return strings.TrimPrefix(rel, "/")
}

// Copy dispatches on r.Type and copies a single accepted entry into
// cfg.DestDir, per §4.D.3. It returns a non-nil error for the caller to
// route through the ignoreCopyErrors policy; counters.Errors is incremented
// here regardless, since that counter is unconditional.
func Copy(ctx context.Context, scanRoot string, r Record, cfg CopyConfig, counters *stats.Counters, logger *slog.Logger) error {
	destPath := filepath.Join(cfg.DestDir, RelativePath(scanRoot, r.Path))

	switch r.Type {
	case entrytype.DIR:
		return copyDir(r, destPath, cfg, counters)
	case entrytype.LNK:
		return copySymlink(r, destPath, cfg, counters)
	case entrytype.REG:
		return copyRegular(ctx, r, destPath, cfg, counters, logger)
	default:
		counters.FilesNotCopied.Add(1)
		return nil
	}
}

func copyDir(r Record, destPath string, cfg CopyConfig, counters *stats.Counters) error {
	mode := os.FileMode(r.Stat.Mode&0o777) | 0o700
	if err := os.Mkdir(destPath, mode); err != nil && !os.IsExist(err) {
		counters.Errors.Add(1)
		return fmt.Errorf("mkdir %s: %w", destPath, err)
	}
	if cfg.TimeUpdate {
		if err := setDirTimes(destPath, time.Unix(r.Stat.Atime, 0), time.Unix(r.Stat.Mtime, 0)); err != nil {
			counters.Errors.Add(1)
			return fmt.Errorf("set times on %s: %w", destPath, err)
		}
	}
	return nil
}

func copySymlink(r Record, destPath string, cfg CopyConfig, counters *stats.Counters) error {
	buf := make([]byte, readlinkBufferSize)
	n, err := unix.Readlink(r.Path, buf)
	if err != nil {
		counters.Errors.Add(1)
		return fmt.Errorf("readlink %s: %w", r.Path, err)
	}
	if n == len(buf) {
		counters.Errors.Add(1)
		return fmt.Errorf("readlink %s: target overflowed %d-byte buffer", r.Path, readlinkBufferSize)
	}
	target := string(buf[:n])

	if err := os.Symlink(target, destPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			_ = os.Remove(destPath)
			err = os.Symlink(target, destPath)
		}
		if err != nil {
			counters.Errors.Add(1)
			return fmt.Errorf("symlink %s: %w", destPath, err)
		}
	}
	if cfg.TimeUpdate {
		if err := setLinkTimes(destPath, time.Unix(r.Stat.Atime, 0), time.Unix(r.Stat.Mtime, 0)); err != nil {
			counters.Errors.Add(1)
			return fmt.Errorf("set link times on %s: %w", destPath, err)
		}
	}
	return nil
}

func copyRegular(ctx context.Context, r Record, destPath string, cfg CopyConfig, counters *stats.Counters, logger *slog.Logger) error {
	src, err := openNoAtime(r.Path)
	if err != nil {
		counters.Errors.Add(1)
		return fmt.Errorf("open source %s: %w", r.Path, err)
	}
	defer src.Close()

	mode := os.FileMode(r.Stat.Mode&0o777) | 0o600
	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		counters.Errors.Add(1)
		return fmt.Errorf("create dest %s: %w", destPath, err)
	}

	var w io.Writer = dst
	if cfg.BWLimiter != nil {
		w = &rateLimitedWriter{w: dst, limiter: cfg.BWLimiter, ctx: ctx}
	}

	buf := make([]byte, copyBufferSize)
	n, copyErr := io.CopyBuffer(w, src, buf)
	if copyErr != nil {
		dst.Close()
		counters.Errors.Add(1)
		return fmt.Errorf("copy %s to %s: %w", r.Path, destPath, copyErr)
	}

	if cfg.TimeUpdate {
		if err := setFileTimes(int(dst.Fd()), destPath, time.Unix(r.Stat.Atime, 0), time.Unix(r.Stat.Mtime, 0)); err != nil {
			dst.Close()
			counters.Errors.Add(1)
			return fmt.Errorf("set times on %s: %w", destPath, err)
		}
	}

	if err := dst.Close(); err != nil {
		counters.Errors.Add(1)
		return fmt.Errorf("close dest %s: %w", destPath, err)
	}

	counters.BytesCopied.Add(n)

	if cfg.Verify {
		if err := Verify(r.Path, destPath); err != nil {
			logger.Error("copy verification failed", "path", r.Path, "dest", destPath, "error", err)
			counters.Errors.Add(1)
			return fmt.Errorf("verify %s against %s: %w", destPath, r.Path, err)
		}
	}

	return nil
}

// setDirTimes sets atime/mtime on a directory by path. Shared across
// platforms since directories are never opened for this purpose.
func setDirTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0)
}
