package supervisor

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parafind/parafind/internal/action"
	"github.com/parafind/parafind/internal/config"
	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/filter"
	"github.com/parafind/parafind/internal/stats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestRunWalksTreeAndReturnsZeroExitCode(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))

	cfg := &config.Config{NumThreads: 2, MaxDirDepth: 10, ScanPaths: []string{root}}
	counters := stats.New()
	buf := &bytes.Buffer{}
	actions := action.NewPipeline(action.Config{}, action.NewWriter(buf), counters, discardLogger(), fatal.New())
	sup := New(cfg, &filter.Pipeline{}, actions, counters, fatal.New(), discardLogger())

	code := sup.Run(context.Background())
	assert.Equal(t, 0, code)

	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	sort.Strings(got)
	want := []string{root, filepath.Join(root, "a.txt"), filepath.Join(root, "sub"), filepath.Join(root, "sub", "b.txt")}
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestRunReturnsOneWhenScanPathMissing(t *testing.T) {
	cfg := &config.Config{NumThreads: 1, MaxDirDepth: 10, ScanPaths: []string{"/nonexistent-parafind-path"}}
	counters := stats.New()
	buf := &bytes.Buffer{}
	actions := action.NewPipeline(action.Config{}, action.NewWriter(buf), counters, discardLogger(), fatal.New())
	sup := New(cfg, &filter.Pipeline{}, actions, counters, fatal.New(), discardLogger())

	code := sup.Run(context.Background())
	assert.Equal(t, 1, code)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{NumThreads: 0}
	counters := stats.New()
	buf := &bytes.Buffer{}
	actions := action.NewPipeline(action.Config{}, action.NewWriter(buf), counters, discardLogger(), fatal.New())
	sup := New(cfg, &filter.Pipeline{}, actions, counters, fatal.New(), discardLogger())

	code := sup.Run(context.Background())
	assert.Equal(t, 1, code)
}
