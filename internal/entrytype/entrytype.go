// Package entrytype resolves a filesystem entry's type from either the
// directory-stream hint or a stat call, and carries the stat fields the rest
// of the pipeline needs.
package entrytype

import "io/fs"

// Type is the symbolic entry type tag shared by the filter pipeline, the
// print action, and the walker's directory-vs-file dispatch.
type Type int

const (
	Unknown Type = iota
	BLK
	CHR
	DIR
	FIFO
	LNK
	REG
	SOCK
)

// String returns the wire-format tag used in the print action's JSON "type"
// field (blockdev, chardev, dir, fifo, symlink, regfile, unixsock, unknown).
// --type characters are mapped by FromSearchChar instead.
func (t Type) String() string {
	switch t {
	case BLK:
		return "blockdev"
	case CHR:
		return "chardev"
	case DIR:
		return "dir"
	case FIFO:
		return "fifo"
	case LNK:
		return "symlink"
	case REG:
		return "regfile"
	case SOCK:
		return "unixsock"
	default:
		return "unknown"
	}
}

// FromSearchChar maps the single-character --type argument to a Type. ok is
// false for an unrecognized character.
func FromSearchChar(c byte) (Type, bool) {
	switch c {
	case 'b':
		return BLK, true
	case 'c':
		return CHR, true
	case 'd':
		return DIR, true
	case 'p':
		return FIFO, true
	case 'l':
		return LNK, true
	case 'f':
		return REG, true
	case 's':
		return SOCK, true
	default:
		return Unknown, false
	}
}

// StatInfo carries the stat(2) fields the filter and print stages consume.
// Times are Unix-epoch seconds, matching the wire format in the spec's JSON
// output.
type StatInfo struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Blksize int64
	Blocks  int64
	Atime   int64
	Mtime   int64
	Ctime   int64
}

const (
	sIFMT  = 0170000
	sIFBLK = 0060000
	sIFCHR = 0020000
	sIFDIR = 0040000
	sIFIFO = 0010000
	sIFLNK = 0120000
	sIFREG = 0100000
	sIFSOCK = 0140000
)

// FromMode maps POSIX st_mode type bits to a Type.
func FromMode(mode uint32) Type {
	switch mode & sIFMT {
	case sIFBLK:
		return BLK
	case sIFCHR:
		return CHR
	case sIFDIR:
		return DIR
	case sIFIFO:
		return FIFO
	case sIFLNK:
		return LNK
	case sIFREG:
		return REG
	case sIFSOCK:
		return SOCK
	default:
		return Unknown
	}
}

// fromHint maps an fs.DirEntry hint's ModeType bits to a Type. ok is false
// when the hint is the stdlib's unresolved-d_type sentinel.
func fromHint(hint fs.FileMode) (Type, bool) {
	if hint == unresolvedHint {
		return Unknown, false
	}
	switch {
	case hint&fs.ModeDir != 0:
		return DIR, true
	case hint&fs.ModeSymlink != 0:
		return LNK, true
	case hint&fs.ModeNamedPipe != 0:
		return FIFO, true
	case hint&fs.ModeSocket != 0:
		return SOCK, true
	case hint&fs.ModeDevice != 0:
		if hint&fs.ModeCharDevice != 0 {
			return CHR, true
		}
		return BLK, true
	case hint&fs.ModeCharDevice != 0:
		return CHR, true
	case hint.IsRegular():
		return REG, true
	default:
		return Unknown, false
	}
}

// unresolvedHint is the sentinel fs.DirEntry.Type() returns when the
// directory stream's d_type was DT_UNKNOWN and the stdlib declined to stat.
const unresolvedHint = ^fs.FileMode(0)

// NoHint is passed to Resolve at call sites with no directory-stream hint
// available (scan-path roots stat'd directly, not read out of a directory
// stream), forcing fromHint to report hintKnown=false so the stat-derived
// type is always used.
const NoHint = unresolvedHint

// Entry is the outcome of resolving a single directory entry's type.
type Entry struct {
	Type     Type
	HintWasUnknown bool
	Stat     *StatInfo
	StatErr  error
}

// Resolve determines an entry's Type per the fixed precedence: hint if known,
// else stat-derived, else Unknown. It stats iff forceStat is set or the hint
// is unknown, using fstatat relative to dirFd with AT_SYMLINK_NOFOLLOW so the
// check can never be fooled by a concurrent rename of a path component.
func Resolve(dirFd int, name string, hint fs.FileMode, forceStat bool) Entry {
	hintType, hintKnown := fromHint(hint)

	if !forceStat && hintKnown {
		return Entry{Type: hintType}
	}

	info, err := statAt(dirFd, name)
	if err != nil {
		return Entry{Type: hintType, HintWasUnknown: !hintKnown, StatErr: err}
	}

	resolved := hintType
	if !hintKnown {
		resolved = FromMode(info.Mode)
	}
	return Entry{Type: resolved, HintWasUnknown: !hintKnown, Stat: info}
}
