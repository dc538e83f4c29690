//go:build linux

package action

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// openNoAtime opens path for reading, best-effort requesting that the
// kernel not update its atime. Some filesystems/permission models reject
// O_NOATIME with EPERM; retry without it in that case.
func openNoAtime(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		return os.OpenFile(path, os.O_RDONLY, 0)
	}
	return f, nil
}

// setFileTimes sets atime/mtime on an open descriptor via AT_EMPTY_PATH,
// falling back to a path-based call if the filesystem doesn't support it.
func setFileTimes(fd int, path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(fd, "", times, unix.AT_EMPTY_PATH); err != nil {
		return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0)
	}
	return nil
}

// setLinkTimes sets atime/mtime on a symlink itself, without following it.
func setLinkTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW)
}
