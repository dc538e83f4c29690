package action

import (
	"fmt"
	"os"

	"github.com/parafind/parafind/internal/entrytype"
	"github.com/parafind/parafind/internal/stats"
)

// Unlink removes path if r is not a directory, per §4.D.4. Directories are
// silently skipped; the caller already guarantees unlinkFiles is set.
func Unlink(r Record, counters *stats.Counters) error {
	if r.Type == entrytype.DIR {
		return nil
	}
	if err := os.Remove(r.Path); err != nil {
		counters.Errors.Add(1)
		return fmt.Errorf("unlink %s: %w", r.Path, err)
	}
	return nil
}
