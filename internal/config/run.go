package config

import (
	"fmt"

	"golang.org/x/time/rate"

	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/filter"
)

// Config is the validated, immutable configuration shared read-only by the
// supervisor and every worker, per §3.
type Config struct {
	ScanPaths []string

	NumThreads      int
	GodeepThreshold int64
	MaxDirDepth     uint16

	SearchType    entrytype.Type
	HasSearchType bool
	NameFilters   []string
	PathFilter    string

	Size  filter.Thresholds
	Atime filter.Thresholds
	Ctime filter.Thresholds
	Mtime filter.Thresholds

	FilterUID    *uint32
	FilterGID    *uint32
	FilterMountID *uint64

	PrintDisabled bool
	JSONOutput    bool
	Print0        bool

	CopyDestDir      string
	CopyTimeUpdate   bool
	IgnoreCopyErrors bool

	UnlinkFiles        bool
	IgnoreUnlinkErrors bool

	ExecCmdLine []string

	StatAll             bool
	CheckACLs           bool
	QuitAfterFirstMatch bool
	PrintSummary        bool
	PrintVerbose        bool

	Verify      bool
	BWLimiter   *rate.Limiter
}

// Validate derives the invariants fixed at config-validation time (§3) and
// rejects configurations that can never be satisfied.
func (c *Config) Validate() error {
	if c.NumThreads < 1 {
		return fmt.Errorf("numThreads must be >= 1, got %d", c.NumThreads)
	}

	if len(c.ScanPaths) == 0 {
		c.ScanPaths = []string{"."}
	}

	if c.CopyDestDir != "" && len(c.ScanPaths) != 1 {
		return fmt.Errorf("--copyto requires exactly one scan path, got %d", len(c.ScanPaths))
	}

	needsStat := c.Size.Active() || c.Atime.Active() || c.Ctime.Active() || c.Mtime.Active() ||
		c.FilterUID != nil || c.FilterGID != nil || c.FilterMountID != nil ||
		c.CopyDestDir != "" || c.UnlinkFiles
	if needsStat {
		c.StatAll = true
	}

	if c.GodeepThreshold == 0 {
		c.GodeepThreshold = int64(c.NumThreads)
	}
	if c.NumThreads == 1 {
		c.GodeepThreshold = 0
	}

	return nil
}
