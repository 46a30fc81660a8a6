package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/diag"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
	"github.com/stellarr-r/strategy-launcher/internal/service/provision"
	"github.com/stellarr-r/strategy-launcher/internal/version"
)

// Environment variable names the application reads at startup.
const (
	// VersionEnv carries the launcher version, DEV in development mode.
	VersionEnv = "STRATEGY_ANALYZER_VERSION"
	// DataDirEnv carries the path of the application's data subdirectory.
	DataDirEnv = "STRATEGY_ANALYZER_DATA_DIR"
)

const (
	// interruptGracePeriod is how long an interrupted application may keep
	// running before it is killed.
	interruptGracePeriod = 10 * time.Second

	// failureStage names this phase in fatal diagnostics.
	failureStage = "Launch application"
)

// Result reports how the application run went.
type Result struct {
	// ExitCode of the interpreter process.
	ExitCode int
}

// Orchestrator starts the application and waits for it.
type Orchestrator struct {
	cfg *config.Config
}

// New returns an Orchestrator bound to the provided settings.
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{cfg: cfg}
}

// Run invokes the interpreter on the artifact and blocks until it exits.
// The application owns the terminal while it runs; no timeout is imposed.
// Its exit code is observed and logged but never becomes the launcher's
// own: a failing application still counts as a completed launch. The only
// fatal condition here is an interpreter that cannot be started at all.
func (o *Orchestrator) Run(ctx context.Context, env *provision.Environment, artifactPath string) (*Result, error) {
	ctx = logger.WithName(ctx, "launch")

	cmd := exec.CommandContext(ctx, env.Interpreter, artifactPath)
	cmd.Dir = env.DataRoot
	cmd.Env = append(os.Environ(),
		VersionEnv+"="+version.Exported(o.cfg.DevMode),
		DataDirEnv+"="+env.DataDir,
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Forward interruption instead of killing outright; the application
	// handles the terminal's interrupt itself.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGracePeriod

	logger.InfoKV(ctx, "Starting application",
		"interpreter", env.Interpreter, "artifact", artifactPath, "cwd", env.DataRoot)

	err := cmd.Run()
	if err == nil {
		logger.Info(ctx, "Application exited cleanly")
		return &Result{}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		logger.WarnKV(ctx, "Application exited with an error", "exit_code", code)

		return &Result{ExitCode: code}, nil
	}

	return nil, diag.NewFailure(failureStage,
		fmt.Errorf("run interpreter %s: %w", env.Interpreter, err),
		"Check the interpreter installation",
		"Run the interpreter manually to see its error")
}
