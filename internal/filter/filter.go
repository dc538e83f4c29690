// Package filter implements the fixed, short-circuiting predicate chain
// applied to every discovered directory entry: type, name, path, size/time,
// then uid/gid.
package filter

import (
	"path/filepath"

	"github.com/parafind/parafind/internal/entrytype"
)

// Thresholds holds the optional exact/less/greater comparison values for one
// stat field (size, atime, ctime, or mtime). A nil pointer means that
// comparison is not active.
type Thresholds struct {
	Exact   *int64
	Less    *int64
	Greater *int64
}

// Active reports whether any of the three comparisons is configured.
func (t Thresholds) Active() bool {
	return t.Exact != nil || t.Less != nil || t.Greater != nil
}

// checkExactLessGreater is the single function the REDESIGN FLAGS call for
// in place of macro-generated per-field code: it evaluates one value against
// one threshold triple, used identically for size, atime, ctime, and mtime.
func checkExactLessGreater(value int64, t Thresholds) bool {
	if t.Exact != nil && value != *t.Exact {
		return false
	}
	if t.Less != nil && !(value < *t.Less) {
		return false
	}
	if t.Greater != nil && !(value > *t.Greater) {
		return false
	}
	return true
}

// Entry is the view of a discovered filesystem entry the pipeline needs.
type Entry struct {
	Path string
	Base string
	Type entrytype.Type
	Stat *entrytype.StatInfo
}

// Pipeline is the fixed, ordered conjunction of filters configured for a run.
type Pipeline struct {
	SearchType    entrytype.Type
	HasSearchType bool

	NameFilters []*globPattern
	PathFilter  *globPattern

	Size  Thresholds
	Atime Thresholds
	Ctime Thresholds
	Mtime Thresholds

	UID    *uint32
	HasUID bool
	GID    *uint32
	HasGID bool
}

// sizeTimeField is one entry of the runtime table iterated by the size/time
// stage, in the fixed order size, atime, ctime, mtime.
type sizeTimeField struct {
	thresholds Thresholds
	extract    func(*entrytype.StatInfo) int64
}

// NewPattern compiles a '*'/'?' glob pattern for use in NameFilters or
// PathFilter.
func NewPattern(pattern string) (*globPattern, error) {
	return compileGlob(pattern)
}

// Match evaluates the fixed predicate chain against e, short-circuiting on
// the first rejection. needsDiagnostic is set when the caller should log a
// diagnostic even though the outcome is a plain reject, not an error (the
// type-filter-on-unresolved-type case).
func (p *Pipeline) Match(e Entry) (accept bool, needsDiagnostic bool) {
	if !p.checkType(e) {
		return false, e.Type == entrytype.Unknown && p.HasSearchType
	}
	if !p.checkName(e) {
		return false, false
	}
	if !p.checkPath(e) {
		return false, false
	}
	if !p.checkSizeTime(e) {
		return false, false
	}
	if !p.checkUIDGID(e) {
		return false, false
	}
	return true, false
}

func (p *Pipeline) checkType(e Entry) bool {
	if !p.HasSearchType {
		return true
	}
	if e.Type == entrytype.Unknown {
		return false
	}
	return e.Type == p.SearchType
}

func (p *Pipeline) checkName(e Entry) bool {
	if len(p.NameFilters) == 0 {
		return true
	}
	base := e.Base
	if base == "" {
		base = filepath.Base(e.Path)
	}
	for _, pat := range p.NameFilters {
		if pat.match(base) {
			return true
		}
	}
	return false
}

func (p *Pipeline) checkPath(e Entry) bool {
	if p.PathFilter == nil {
		return true
	}
	if e.Type == entrytype.DIR || (e.Type == entrytype.Unknown && e.Stat == nil) {
		return false
	}
	return p.PathFilter.match(e.Path)
}

func (p *Pipeline) checkSizeTime(e Entry) bool {
	fields := p.sizeTimeTable()
	active := false
	for _, f := range fields {
		if f.thresholds.Active() {
			active = true
			break
		}
	}
	if !active {
		return true
	}
	if e.Type == entrytype.DIR || e.Stat == nil {
		return false
	}
	for _, f := range fields {
		if !f.thresholds.Active() {
			continue
		}
		if !checkExactLessGreater(f.extract(e.Stat), f.thresholds) {
			return false
		}
	}
	return true
}

// sizeTimeTable builds the runtime table of four extractors, in the fixed
// order size, atime, ctime, mtime, used in place of macro-generated code.
func (p *Pipeline) sizeTimeTable() [4]sizeTimeField {
	return [4]sizeTimeField{
		{p.Size, func(s *entrytype.StatInfo) int64 { return s.Size }},
		{p.Atime, func(s *entrytype.StatInfo) int64 { return s.Atime }},
		{p.Ctime, func(s *entrytype.StatInfo) int64 { return s.Ctime }},
		{p.Mtime, func(s *entrytype.StatInfo) int64 { return s.Mtime }},
	}
}

func (p *Pipeline) checkUIDGID(e Entry) bool {
	if !p.HasUID && !p.HasGID {
		return true
	}
	if e.Stat == nil {
		return false
	}
	if p.HasUID && e.Stat.UID != *p.UID {
		return false
	}
	if p.HasGID && e.Stat.GID != *p.GID {
		return false
	}
	return true
}
