package selfupdate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
	"github.com/stellarr-r/strategy-launcher/internal/relay"
)

const (
	// candidateSuffix marks the freshly downloaded launcher next to the
	// running binary.
	candidateSuffix = ".new"

	// backupSuffix is left behind by an interrupted replacement.
	backupSuffix = ".old"

	// candidateFileMode keeps the downloaded launcher executable so the
	// relay can start it directly after the copy.
	candidateFileMode os.FileMode = 0o755
)

// resolveExecutable returns the running binary's path with symlinks
// resolved, so the comparison and the relay act on the real file.
func resolveExecutable() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("resolve executable symlinks: %w", err)
	}

	return resolved, nil
}

// filesEqual compares two files byte for byte. Changed bytes are the only
// update signal; no version numbers are parsed.
func filesEqual(pathA, pathB string) (bool, error) {
	infoA, err := os.Stat(pathA)
	if err != nil {
		return false, err
	}

	infoB, err := os.Stat(pathB)
	if err != nil {
		return false, err
	}

	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	contentsA, err := os.ReadFile(filepath.Clean(pathA))
	if err != nil {
		return false, err
	}

	contentsB, err := os.ReadFile(filepath.Clean(pathB))
	if err != nil {
		return false, err
	}

	return bytes.Equal(contentsA, contentsB), nil
}

// sweepStaleArtifacts removes leftovers of an interrupted update: an unused
// candidate, a replaced binary backup, and a relay script that never ran.
func sweepStaleArtifacts(ctx context.Context, executable string) {
	stale := []string{
		executable + candidateSuffix,
		executable + backupSuffix,
		relay.ScriptPath(executable),
	}

	for _, path := range stale {
		err := os.Remove(path)
		if err == nil {
			logger.InfoKV(ctx, "Removed stale update artifact", "path", path)
			continue
		}

		if !errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Could not remove stale update artifact", "path", path, "error", err)
		}
	}
}
