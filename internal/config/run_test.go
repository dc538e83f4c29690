package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parafind/parafind/internal/filter"
)

func TestValidateDefaultsEmptyScanPathsToDot(t *testing.T) {
	c := &Config{NumThreads: 4}
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"."}, c.ScanPaths)
}

func TestValidateCopyToRequiresSinglePath(t *testing.T) {
	c := &Config{NumThreads: 4, ScanPaths: []string{"a", "b"}, CopyDestDir: "/dst"}
	err := c.Validate()
	assert.Error(t, err)
}

func TestValidateForcesStatAllWhenSizeFilterSet(t *testing.T) {
	threshold := int64(10)
	c := &Config{NumThreads: 4, Size: filter.Thresholds{Greater: &threshold}}
	require.NoError(t, c.Validate())
	assert.True(t, c.StatAll)
}

func TestValidateSingleThreadForcesPureDepth(t *testing.T) {
	c := &Config{NumThreads: 1}
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(0), c.GodeepThreshold)
}

func TestValidateGodeepDefaultsToNumThreads(t *testing.T) {
	c := &Config{NumThreads: 8}
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(8), c.GodeepThreshold)
}
