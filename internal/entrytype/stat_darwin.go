//go:build darwin

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
		Dev:     uint64(st.Dev), //nolint:gosec // dev_t is int32 on darwin, always non-negative
		Ino:     st.Ino,
		Mode:    uint32(st.Mode),
		Nlink:   uint64(st.Nlink),
		UID:     st.Uid,
		GID:     st.Gid,
		Rdev:    uint64(st.Rdev), //nolint:gosec // dev_t is int32 on darwin, always non-negative
		Size:    st.Size,
		Blksize: int64(st.Blksize),
		Blocks:  st.Blocks,
		Atime:   st.Atimespec.Sec,
		Mtime:   st.Mtimespec.Sec,
		Ctime:   st.Ctimespec.Sec,
	}, nil
}
