package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andres10976/cve-monitor/internal/model"
)

func TestFileStateStore_LoadMissing(t *testing.T) {
	s := NewFileStateStore(filepath.Join(t.TempDir(), "state.json"))

	assert.Equal(t, model.MonitorState{}, s.Load(context.Background()))
}

func TestFileStateStore_LoadCorrupt(t *testing.T) {
	tests := map[string]string{
		"truncated":  `{"pull_count": `,
		"not json":   "garbage",
		"negative":   `{"pull_count": -3}`,
		"wrong type": `{"pull_count": "seven"}`,
		"fractional": `{"pull_count": 1.5}`,
		"empty file": "",
		"json array": `[1, 2]`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			got := NewFileStateStore(path).Load(context.Background())
			assert.Equal(t, uint64(0), got.PullCount)
		})
	}
}

func TestFileStateStore_LoadMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"other": 9}`), 0o644))

	assert.Equal(t, uint64(0), NewFileStateStore(path).Load(context.Background()).PullCount)
}

func TestFileStateStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	s := NewFileStateStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, model.MonitorState{PullCount: 42}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pull_count": 42}`, string(data))
	assert.Equal(t, uint64(42), s.Load(ctx).PullCount)
}

func TestFileStateStore_SaveOverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	s := NewFileStateStore(path)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.Save(ctx, model.MonitorState{PullCount: i}))
	}

	assert.Equal(t, uint64(3), s.Load(ctx).PullCount)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestFileStateStore_SaveUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := NewFileStateStore(filepath.Join(blocker, "state.json"))
	assert.Error(t, s.Save(context.Background(), model.MonitorState{PullCount: 1}))
}
