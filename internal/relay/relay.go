package relay

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// maxWaitTries bounds the relay's poll for the old process to exit.
// One try per second; past the bound the relay gives up without touching
// the binary.
const maxWaitTries = 30

// scriptFileMode makes the generated script runnable by the owner only.
const scriptFileMode os.FileMode = 0o700

// Script is a staged relay ready to be started.
type Script struct {
	// Path is the location of the generated script file.
	Path string
}

// Stage writes the replace-and-relaunch script next to the target binary.
// The script polls until pid has exited, copies candidate over target,
// removes the candidate, starts the target detached and deletes itself.
func Stage(ctx context.Context, target, candidate string, pid int) (*Script, error) {
	path := ScriptPath(target)

	if err := os.WriteFile(path, []byte(scriptContents(target, candidate, pid)), scriptFileMode); err != nil {
		return nil, fmt.Errorf("write relay script: %w", err)
	}

	// WriteFile only applies the mode on create; an overwritten stale
	// script keeps its old one.
	if err := os.Chmod(path, scriptFileMode); err != nil {
		return nil, fmt.Errorf("chmod relay script: %w", err)
	}

	logger.DebugKV(ctx, "Staged relay script", "path", path)

	return &Script{Path: path}, nil
}

// Start launches the staged script as a detached process and releases it.
// The relay must outlive this process to perform the replacement, so the
// command is deliberately not bound to ctx.
func (s *Script) Start(ctx context.Context) error {
	name, args := command(s.Path)

	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = detachedProcAttr()

	// No inherited stdio: the relay must not hold our terminal open.
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start relay script: %w", err)
	}

	pid := cmd.Process.Pid

	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("release relay process: %w", err)
	}

	logger.InfoKV(ctx, "Relay started", "script", s.Path, "pid", pid)

	return nil
}
