package action

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/parafind/parafind/internal/entrytype"
)

// Writer serializes whole-record writes to stdout so that concurrent workers
// can never interleave a JSON record below the line level (§9 "Output
// interleaving").
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w with the shared output mutex.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (o *Writer) write(b []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(b)
	return err
}

// Record is the printable view of a matched entry.
type Record struct {
	Path string
	Type entrytype.Type
	Stat *entrytype.StatInfo
}

// Print emits one record according to the configured print mode. A no-op
// when disabled is the caller's responsibility (checked once up front by the
// action pipeline).
func Print(w *Writer, r Record, jsonOutput, print0, statAll bool) error {
	if jsonOutput {
		return w.write(formatJSON(r, statAll))
	}
	return w.write(formatPlain(r.Path, print0))
}

func formatPlain(path string, print0 bool) []byte {
	sep := byte('\n')
	if print0 {
		sep = 0
	}
	b := make([]byte, 0, len(path)+1)
	b = append(b, path...)
	b = append(b, sep)
	return b
}

func formatJSON(r Record, statAll bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"path":"`)
	escapeJSONInto(&buf, r.Path)
	buf.WriteString(`","type":"`)
	buf.WriteString(r.Type.String())
	buf.WriteByte('"')

	if statAll {
		if r.Stat == nil {
			for _, name := range statFieldNames {
				fmt.Fprintf(&buf, `,"%s":null`, name)
			}
		} else {
			fields := statFieldValues(r.Stat)
			for i, name := range statFieldNames {
				fmt.Fprintf(&buf, `,"%s":"%d"`, name, fields[i])
			}
		}
	}

	buf.WriteByte('}')
	buf.WriteByte('\n')
	return buf.Bytes()
}

var statFieldNames = [...]string{
	"st_dev", "st_ino", "st_mode", "st_nlink", "st_uid", "st_gid",
	"st_rdev", "st_size", "st_blksize", "st_blocks",
	"st_atime", "st_mtime", "st_ctime",
}

func statFieldValues(s *entrytype.StatInfo) [13]int64 {
	return [13]int64{
		int64(s.Dev), int64(s.Ino), int64(s.Mode), int64(s.Nlink), //nolint:gosec // wire format is signed decimal
		int64(s.UID), int64(s.GID), int64(s.Rdev),
		s.Size, s.Blksize, s.Blocks,
		s.Atime, s.Mtime, s.Ctime,
	}
}

// escapeJSONInto appends s to buf with the escaping rules the spec mandates:
// '"', '\', control characters U+0000-U+001F as \uXXXX, plus the short
// escapes \b \f \n \r \t.
func escapeJSONInto(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
}
