package walker

import (
	"errors"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/parafind/parafind/internal/stats"
)

const (
	xattrAccessACL  = "system.posix_acl_access"
	xattrDefaultACL = "system.posix_acl_default"
)

// checkACLs probes for POSIX ACL xattrs on path and bumps the matching
// counters. Probing with a nil buffer asks the kernel only for the
// attribute's size, so this never allocates or copies ACL data.
func checkACLs(path string, isDir bool, counters *stats.Counters, logger *slog.Logger) {
	if hasXattr(path, xattrAccessACL, logger) {
		counters.AccessACLs.Add(1)
	}
	if isDir && hasXattr(path, xattrDefaultACL, logger) {
		counters.DefaultACLs.Add(1)
	}
}

func hasXattr(path, name string, logger *slog.Logger) bool {
	_, err := unix.Lgetxattr(path, name, nil)
	if err == nil {
		return true
	}
	if errors.Is(err, unix.ENODATA) || errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP) {
		return false
	}
	logger.Warn("acl check failed", "path", path, "xattr", name, "error", err)
	return false
}
