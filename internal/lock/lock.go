package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// Filename is the lock file kept in the data root while the launcher
// provisions the environment and fetches the artifact.
const Filename = "strategy-launcher.lock"

// ErrAlreadyRunning reports that a live launcher already owns the lock.
var ErrAlreadyRunning = errors.New("another launcher instance is already running")

// lockFilePermissions restricts the lock file to the owning user.
const lockFilePermissions = 0o600

// Lock is an exclusive file lock scoped to one data root.
type Lock struct {
	path string
}

// Acquire claims the lock file under dir and records the owner PID in it.
// A lock whose recorded process no longer exists is reclaimed; a lock held
// by a live process fails with ErrAlreadyRunning naming the owner.
func Acquire(ctx context.Context, dir string) (*Lock, error) {
	path := filepath.Join(dir, Filename)

	// Two attempts: the first may find a stale file, the second runs after
	// the reclaim. Losing the second race means a live contender won.
	for attempt := 0; attempt < 2; attempt++ {
		lock, err := tryCreate(path)
		if err == nil {
			return lock, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		pid, pidErr := ownerPID(path)
		if pidErr == nil && processAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}

		// The recorded owner is gone, or the file holds no readable PID.
		logger.WarnKV(ctx, "Reclaiming stale lock", "path", path)

		if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reclaim stale lock: %w", err)
		}
	}

	return nil, ErrAlreadyRunning
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}

	return nil
}

// tryCreate atomically creates the lock file with this process's PID inside.
func tryCreate(path string) (*Lock, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, lockFilePermissions)
	if err != nil {
		return nil, err
	}

	if _, err = file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = file.Close()
		_ = os.Remove(path)

		return nil, err
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &Lock{path: path}, nil
}

// ownerPID reads the PID recorded in an existing lock file.
func ownerPID(path string) (int, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(contents)))
}

// processAlive reports whether a process with the given PID exists.
func processAlive(pid int) bool {
	process, err := ps.FindProcess(pid)
	if err != nil {
		// The process table is unreadable, so assume the owner is alive
		// rather than steal a lock from a live process.
		return true
	}

	return process != nil
}
