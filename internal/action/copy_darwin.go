//go:build darwin

package action

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// openNoAtime opens path for reading. Darwin has no O_NOATIME equivalent.
func openNoAtime(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY, 0)
}

// setFileTimes sets atime/mtime by path. Darwin lacks AT_EMPTY_PATH, so the
// descriptor is unused and the call always goes through the path.
func setFileTimes(_ int, path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0)
}

// setLinkTimes sets atime/mtime on a symlink itself, without following it.
func setLinkTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	return unix.UtimesNanoAt(unix.AT_FDCWD, path, times, unix.AT_SYMLINK_NOFOLLOW)
}
