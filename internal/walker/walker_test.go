package walker

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parafind/parafind/internal/action"
	"github.com/parafind/parafind/internal/config"
	"github.com/parafind/parafind/internal/fatal"
	"github.com/parafind/parafind/internal/filter"
	"github.com/parafind/parafind/internal/stack"
	"github.com/parafind/parafind/internal/stats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func newTestWalker(t *testing.T, cfg *config.Config) (*Walker, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	counters := stats.New()
	actions := action.NewPipeline(action.Config{
		PrintDisabled: false,
		Print0:        false,
	}, action.NewWriter(buf), counters, discardLogger(), fatal.New())

	w := &Walker{
		Config:   cfg,
		Filter:   &filter.Pipeline{},
		Actions:  actions,
		Stack:    stack.New(1),
		Counters: counters,
		Fatal:    fatal.New(),
		Logger:   discardLogger(),
	}
	return w, buf
}

func TestScanVisitsAllEntriesAndRecursesInline(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))

	cfg := &config.Config{NumThreads: 1, MaxDirDepth: 10, GodeepThreshold: 0}
	w, buf := newTestWalker(t, cfg)

	w.Scan(context.Background(), root, 0)

	got := splitNonEmptyLines(buf.String())
	sort.Strings(got)
	want := []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub"),
		filepath.Join(root, "sub", "b.txt"),
	}
	sort.Strings(want)
	assert.Equal(t, want, got)

	snap := w.Counters.Snapshot()
	assert.Equal(t, int64(1), snap.Dirs)
	assert.Equal(t, int64(2), snap.Files)
	assert.Equal(t, int64(3), snap.FilterMatches)
}

func TestScanRespectsMaxDirDepth(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep.txt"), []byte("x"), 0o644))

	cfg := &config.Config{NumThreads: 1, MaxDirDepth: 0, GodeepThreshold: 100}
	w, buf := newTestWalker(t, cfg)

	w.Scan(context.Background(), root, 0)

	got := splitNonEmptyLines(buf.String())
	assert.Equal(t, []string{filepath.Join(root, "sub")}, got)
}

func TestScanPushesToStackWhenBelowGodeepThreshold(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	cfg := &config.Config{NumThreads: 1, MaxDirDepth: 10, GodeepThreshold: 100}
	w, _ := newTestWalker(t, cfg)
	w.Stack = stack.New(2)

	w.Scan(context.Background(), root, 0)

	assert.Equal(t, int64(1), w.Stack.Size())
	item, ok := w.Stack.PopWait()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "sub"), item.Path)
	assert.Equal(t, uint16(1), item.Depth)
}

func TestScanStopsAfterFirstMatchWhenQuitAfterFirstMatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	cfg := &config.Config{NumThreads: 1, MaxDirDepth: 10, GodeepThreshold: 100, QuitAfterFirstMatch: true}
	w, _ := newTestWalker(t, cfg)
	w.Counters.FilterMatches.Add(1)

	w.Scan(context.Background(), root, 0)

	assert.Equal(t, int64(0), w.Counters.Dirs.Load())
	assert.Equal(t, int64(0), w.Counters.Files.Load())
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if line := s[start:i]; line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	return out
}
