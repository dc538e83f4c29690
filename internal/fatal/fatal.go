// Package fatal implements parafind's shared fatal-abort signal: an atomic
// flag checked cooperatively between directories, set together with a
// process-group SIGTERM.
package fatal

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Signal is shared by the supervisor and every worker. Workers check
// Triggered between directories. Trigger is called for an unrecoverable
// directory-open or scan-path lstat errno, an exec-stage child killed by
// signal, and an externally delivered SIGINT/SIGTERM; its first call also
// sends SIGTERM to the process group.
type Signal struct {
	flag atomic.Bool
}

// New returns an untriggered Signal.
func New() *Signal {
	return &Signal{}
}

// Triggered reports whether a fatal condition has been raised.
func (s *Signal) Triggered() bool {
	return s.flag.Load()
}

// Trigger sets the cooperative flag and sends SIGTERM to the whole process
// group, aborting both the walker and any child spawned by the exec action.
// Safe to call more than once or concurrently.
func (s *Signal) Trigger() {
	if s.flag.CompareAndSwap(false, true) {
		_ = unix.Kill(0, unix.SIGTERM)
	}
}
