package selfupdate

import (
	"context"
	"errors"
	"os"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/fetch"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
	"github.com/stellarr-r/strategy-launcher/internal/relay"
)

// Controller performs the launcher's own update check.
type Controller struct {
	cfg     *config.Config
	fetcher *fetch.Fetcher

	// Seams for tests: resolving the running binary and handing off to
	// the relay both touch process-global state.
	executable func() (string, error)
	startRelay func(ctx context.Context, target, candidate string, pid int) error
}

// New returns a Controller bound to the provided settings.
func New(cfg *config.Config) *Controller {
	return &Controller{
		cfg:        cfg,
		fetcher:    fetch.New(cfg.Timeout),
		executable: resolveExecutable,
		startRelay: stageAndStartRelay,
	}
}

// Run checks the remote launcher against the running binary and reports
// whether a restart was scheduled. When it returns true the process must
// exit without running the rest of the pipeline; the relay finishes the
// update and starts the new binary.
//
// The check is best effort: every failure degrades to a warning and the
// run continues on the current version. The only returned error is a
// canceled context.
func (c *Controller) Run(ctx context.Context) (bool, error) {
	ctx = logger.WithName(ctx, "selfupdate")

	if c.cfg.DevMode {
		logger.Info(ctx, "Development mode, self-update disabled")
		return false, nil
	}

	executable, err := c.executable()
	if err != nil {
		logger.WarnKV(ctx, "Cannot resolve own executable, skipping self-update", "error", err)
		return false, nil
	}

	sweepStaleArtifacts(ctx, executable)

	candidate := executable + candidateSuffix

	written, err := c.fetcher.DownloadFile(ctx, c.cfg.LauncherURL, candidate, candidateFileMode)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		logger.WarnKV(ctx, "Self-update fetch failed, continuing with current version",
			"url", c.cfg.LauncherURL, "error", err)

		return false, nil
	}

	logger.DebugKV(ctx, "Fetched launcher candidate", "path", candidate, "bytes", written)

	equal, err := filesEqual(executable, candidate)
	if err != nil {
		c.discardCandidate(ctx, candidate)
		logger.WarnKV(ctx, "Cannot compare launcher candidate, continuing with current version", "error", err)

		return false, nil
	}

	if equal {
		c.discardCandidate(ctx, candidate)
		logger.Info(ctx, "Launcher is up to date")

		return false, nil
	}

	logger.Info(ctx, "New launcher version downloaded, scheduling restart")

	if err = c.startRelay(ctx, executable, candidate, os.Getpid()); err != nil {
		c.discardCandidate(ctx, candidate)

		if removeErr := os.Remove(relay.ScriptPath(executable)); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			logger.WarnKV(ctx, "Could not remove relay script", "error", removeErr)
		}

		logger.WarnKV(ctx, "Cannot hand off to relay, continuing with current version", "error", err)

		return false, nil
	}

	return true, nil
}

// discardCandidate removes a downloaded candidate that will not be used.
func (c *Controller) discardCandidate(ctx context.Context, candidate string) {
	if err := os.Remove(candidate); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Could not remove launcher candidate", "path", candidate, "error", err)
	}
}

// stageAndStartRelay is the production relay handoff.
func stageAndStartRelay(ctx context.Context, target, candidate string, pid int) error {
	script, err := relay.Stage(ctx, target, candidate, pid)
	if err != nil {
		return err
	}

	return script.Start(ctx)
}
