package relay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStage writes the script next to the target.
func TestStage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "strategy-launcher")
	candidate := target + ".new"

	s, err := Stage(context.Background(), target, candidate, os.Getpid())
	require.NoError(t, err)
	require.Equal(t, ScriptPath(target), s.Path)

	info, err := os.Stat(s.Path)
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.NotZero(t, info.Size())
}

// TestStageOverwritesStale replaces a script left behind by an earlier run.
func TestStageOverwritesStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "strategy-launcher")

	require.NoError(t, os.WriteFile(ScriptPath(target), []byte("old"), 0o600))

	s, err := Stage(context.Background(), target, target+".new", os.Getpid())
	require.NoError(t, err)

	contents, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	require.NotEqual(t, "old", string(contents))
}
