//go:build linux

package entrytype

import "golang.org/x/sys/unix"

// statAt issues an lstat-equivalent relative to an open directory
// descriptor, avoiding a path-walk race with a concurrent rename.
func statAt(dirFd int, name string) (*StatInfo, error) {
	var st unix.Stat_t
	if err := unix.Fstatat(dirFd, name, &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return nil, err
	}
	return &StatInfo{
		Dev:     st.Dev,
		Ino:     st.Ino,
		Mode:    st.Mode,
		Nlink:   uint64(st.Nlink), //nolint:unconvert // nlink_t width varies by arch
		UID:     st.Uid,
		GID:     st.Gid,
		Rdev:    st.Rdev,
		Size:    st.Size,
		Blksize: int64(st.Blksize),
		Blocks:  st.Blocks,
		Atime:   st.Atim.Sec,
		Mtime:   st.Mtim.Sec,
		Ctime:   st.Ctim.Sec,
	}, nil
}
