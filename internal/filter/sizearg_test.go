package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeArgDefaultsTo512ByteBlocks(t *testing.T) {
	th, err := ParseSizeArg("2")
	require.NoError(t, err)
	require.NotNil(t, th.Exact)
	assert.Equal(t, int64(1024), *th.Exact)
}

func TestParseSizeArgSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10c", 10},
		{"1k", 1024},
		{"1M", 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"2w", 4},
		{"3b", 1536},
	}
	for _, c := range cases {
		th, err := ParseSizeArg(c.in)
		require.NoError(t, err)
		require.NotNil(t, th.Exact)
		assert.Equal(t, c.want, *th.Exact, c.in)
	}
}

func TestParseSizeArgSignMapsToComparison(t *testing.T) {
	th, err := ParseSizeArg("-15c")
	require.NoError(t, err)
	require.NotNil(t, th.Less)
	assert.Equal(t, int64(15), *th.Less)

	th, err = ParseSizeArg("+15c")
	require.NoError(t, err)
	require.NotNil(t, th.Greater)
	assert.Equal(t, int64(15), *th.Greater)
}

func TestParseTimeArgSignIsInvertedRelativeToSize(t *testing.T) {
	const now = int64(1000000)

	th, err := ParseTimeArg("-7", now)
	require.NoError(t, err)
	require.NotNil(t, th.Greater, "'-' on a time arg means more recent: greater timestamp")
	assert.Equal(t, now-7*86400, *th.Greater)

	th, err = ParseTimeArg("+7", now)
	require.NoError(t, err)
	require.NotNil(t, th.Less, "'+' on a time arg means older: lesser timestamp")
	assert.Equal(t, now-7*86400, *th.Less)

	th, err = ParseTimeArg("7", now)
	require.NoError(t, err)
	require.NotNil(t, th.Exact)
	assert.Equal(t, now-7*86400, *th.Exact)
}
