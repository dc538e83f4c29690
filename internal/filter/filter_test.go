package filter

import (
	"testing"

	"github.com/parafind/parafind/internal/entrytype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPattern(t *testing.T, pattern string) *globPattern {
	t.Helper()
	p, err := NewPattern(pattern)
	require.NoError(t, err)
	return p
}

func TestEmptyPipelineAcceptsEverything(t *testing.T) {
	p := &Pipeline{}
	accept, _ := p.Match(Entry{Path: "a/b.txt", Base: "b.txt", Type: entrytype.REG})
	assert.True(t, accept)
}

func TestTypeFilter(t *testing.T) {
	p := &Pipeline{SearchType: entrytype.DIR, HasSearchType: true}

	accept, _ := p.Match(Entry{Path: "a", Base: "a", Type: entrytype.DIR})
	assert.True(t, accept)

	accept, _ = p.Match(Entry{Path: "a/f", Base: "f", Type: entrytype.REG})
	assert.False(t, accept)
}

func TestTypeFilterUnknownIsRejectedWithDiagnostic(t *testing.T) {
	p := &Pipeline{SearchType: entrytype.REG, HasSearchType: true}
	accept, diag := p.Match(Entry{Path: "a/weird", Base: "weird", Type: entrytype.Unknown})
	assert.False(t, accept)
	assert.True(t, diag)
}

func TestNameFilterMatchesBasenameOnly(t *testing.T) {
	p := &Pipeline{NameFilters: []*globPattern{mustPattern(t, "*.txt")}}

	accept, _ := p.Match(Entry{Path: "sub/a.txt", Base: "a.txt", Type: entrytype.REG})
	assert.True(t, accept)

	accept, _ = p.Match(Entry{Path: "sub/a.log", Base: "a.log", Type: entrytype.REG})
	assert.False(t, accept)
}

func TestPathFilterRejectsDirectories(t *testing.T) {
	p := &Pipeline{PathFilter: mustPattern(t, "*/sub/*")}

	accept, _ := p.Match(Entry{Path: "root/sub", Base: "sub", Type: entrytype.DIR})
	assert.False(t, accept)

	accept, _ = p.Match(Entry{Path: "root/sub/f", Base: "f", Type: entrytype.REG})
	assert.True(t, accept)
}

func TestSizeFilterRequiresStatAndRejectsDirs(t *testing.T) {
	th, err := ParseSizeArg("+15c")
	require.NoError(t, err)
	p := &Pipeline{Size: th}

	accept, _ := p.Match(Entry{Path: "f", Type: entrytype.REG, Stat: &entrytype.StatInfo{Size: 20}})
	assert.True(t, accept)

	accept, _ = p.Match(Entry{Path: "f2", Type: entrytype.REG, Stat: &entrytype.StatInfo{Size: 10}})
	assert.False(t, accept)

	accept, _ = p.Match(Entry{Path: "d", Type: entrytype.DIR, Stat: &entrytype.StatInfo{Size: 999}})
	assert.False(t, accept, "size filter must reject directories even when they pass the comparison")

	accept, _ = p.Match(Entry{Path: "f3", Type: entrytype.REG})
	assert.False(t, accept, "size filter without stat info must reject")
}

func TestUIDGIDFilter(t *testing.T) {
	uid := uint32(1000)
	p := &Pipeline{UID: &uid, HasUID: true}

	accept, _ := p.Match(Entry{Path: "f", Type: entrytype.REG, Stat: &entrytype.StatInfo{UID: 1000}})
	assert.True(t, accept)

	accept, _ = p.Match(Entry{Path: "f2", Type: entrytype.REG, Stat: &entrytype.StatInfo{UID: 1001}})
	assert.False(t, accept)
}

func TestFilterShortCircuitsInOrder(t *testing.T) {
	// A type mismatch should reject before the name filter is even consulted:
	// only the type stage reports needsDiagnostic (for an unresolved type).
	p := &Pipeline{
		SearchType:    entrytype.DIR,
		HasSearchType: true,
		NameFilters:   []*globPattern{mustPattern(t, "nomatch")},
	}
	accept, diag := p.Match(Entry{Path: "a", Base: "a", Type: entrytype.Unknown})
	assert.False(t, accept)
	assert.True(t, diag)
}
