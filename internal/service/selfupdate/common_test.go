package selfupdate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellarr-r/strategy-launcher/internal/relay"
)

// TestFilesEqual covers the byte comparison across sizes and contents.
func TestFilesEqual(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name, contents string) string {
		t.Helper()

		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

		return path
	}

	base := write("a", "launcher bytes")
	sameContents := write("b", "launcher bytes")
	differentSize := write("c", "launcher bytes and more")
	sameSizeDifferentBytes := write("d", "launcher BYTES")

	equal, err := filesEqual(base, sameContents)
	require.NoError(t, err)
	require.True(t, equal)

	equal, err = filesEqual(base, differentSize)
	require.NoError(t, err)
	require.False(t, equal)

	equal, err = filesEqual(base, sameSizeDifferentBytes)
	require.NoError(t, err)
	require.False(t, equal)

	_, err = filesEqual(base, filepath.Join(dir, "missing"))
	require.Error(t, err)
}

// TestResolveExecutable returns an existing path for the test binary.
func TestResolveExecutable(t *testing.T) {
	t.Parallel()

	path, err := resolveExecutable()
	require.NoError(t, err)
	require.NotEmpty(t, path)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestSweepStaleArtifacts removes everything an interrupted update leaves.
func TestSweepStaleArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	executable := filepath.Join(dir, "launcher")

	stale := []string{
		executable + candidateSuffix,
		executable + backupSuffix,
		relay.ScriptPath(executable),
	}

	for _, path := range stale {
		require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))
	}

	sweepStaleArtifacts(context.Background(), executable)

	for _, path := range stale {
		_, err := os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist)
	}
}
