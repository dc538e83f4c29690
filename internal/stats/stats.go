// Package stats holds the run-wide atomic counters every worker updates
// concurrently, and renders them into the end-of-run summary line.
package stats

import "sync/atomic"

// Counters is the shared, concurrently-mutated statistics block. Every field
// is monotonically increasing and updated with a relaxed atomic add; they
// are read back for the end-of-run summary, and FilterMatches is also read
// during the run for --quit.
type Counters struct {
	Dirs          atomic.Int64
	Files         atomic.Int64
	Unknowns      atomic.Int64
	FilterMatches atomic.Int64
	StatCalls     atomic.Int64
	AccessACLs    atomic.Int64
	DefaultACLs   atomic.Int64
	Errors        atomic.Int64
	BytesCopied   atomic.Int64
	FilesNotCopied atomic.Int64
}

// New returns a zeroed Counters block.
func New() *Counters {
	return &Counters{}
}

// Snapshot is a point-in-time, non-atomic read of every counter, suitable
// for rendering after all workers have joined.
type Snapshot struct {
	Dirs           int64
	Files          int64
	Unknowns       int64
	FilterMatches  int64
	StatCalls      int64
	AccessACLs     int64
	DefaultACLs    int64
	Errors         int64
	BytesCopied    int64
	FilesNotCopied int64
}

// Snapshot reads every counter. Safe to call while workers are still
// running, though the result is then only approximate.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Dirs:           c.Dirs.Load(),
		Files:          c.Files.Load(),
		Unknowns:       c.Unknowns.Load(),
		FilterMatches:  c.FilterMatches.Load(),
		StatCalls:      c.StatCalls.Load(),
		AccessACLs:     c.AccessACLs.Load(),
		DefaultACLs:    c.DefaultACLs.Load(),
		Errors:         c.Errors.Load(),
		BytesCopied:    c.BytesCopied.Load(),
		FilesNotCopied: c.FilesNotCopied.Load(),
	}
}
