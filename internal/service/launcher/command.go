package launcher

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/diag"
	"github.com/stellarr-r/strategy-launcher/internal/lock"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
	"github.com/stellarr-r/strategy-launcher/internal/service/artifact"
	"github.com/stellarr-r/strategy-launcher/internal/service/launch"
	"github.com/stellarr-r/strategy-launcher/internal/service/provision"
	"github.com/stellarr-r/strategy-launcher/internal/service/selfupdate"
)

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// DevMode disables self-update and uses a local artifact.
	DevMode bool
	// DataDir overrides the data root location.
	DataDir string
	// LocalArtifact is the artifact path used in development mode.
	LocalArtifact string
}

// Outcome summarizes a completed run for the CLI layer.
type Outcome struct {
	// RestartScheduled means a new launcher version was handed to the
	// relay and nothing else ran in this process.
	RestartScheduled bool
	// DataDir is the provisioned data root, empty when RestartScheduled.
	DataDir string
	// AppExitCode is the application's exit code when it ran. It is
	// reported, not adopted: the launcher still exits 0.
	AppExitCode int
}

// The phase interfaces keep the pipeline testable without real network or
// process side effects.
type updateChecker interface {
	Run(ctx context.Context) (bool, error)
}

type environmentProvisioner interface {
	Run(ctx context.Context) (*provision.Environment, error)
}

type artifactFetcher interface {
	Run(ctx context.Context, dataRoot string) (string, error)
}

type appLauncher interface {
	Run(ctx context.Context, env *provision.Environment, artifactPath string) (*launch.Result, error)
}

// Pipeline sequences the launcher phases: self-update, provision, fetch,
// launch. At most one of {no update, update-and-exit} happens per run.
type Pipeline struct {
	cfg *config.Config

	updater     updateChecker
	provisioner environmentProvisioner
	artifacts   artifactFetcher
	launcher    appLauncher
}

// NewPipeline wires the production components for cfg.
func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		updater:     selfupdate.New(cfg),
		provisioner: provision.New(cfg),
		artifacts:   artifact.New(cfg),
		launcher:    launch.New(cfg),
	}
}

// Run executes the launcher pipeline and is the public entry point for the
// CLI. Any returned error has already produced its diagnostic; the CLI
// only maps it to exit code 1.
func Run(ctx context.Context, opts *Options) (*Outcome, error) {
	ctx = logger.WithName(ctx, "launcher")

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fail(ctx, err)
	}

	return NewPipeline(cfg).Run(ctx)
}

// Run drives the phases in order and stops at the first fatal condition.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	diag.Phase(ctx, diag.PhaseSelfUpdate, "Self-update check")

	restart, err := p.updater.Run(ctx)
	if err != nil {
		return nil, fail(ctx, err)
	}

	if restart {
		logger.Info(ctx, "Restart scheduled, handing over to the new version")
		return &Outcome{RestartScheduled: true}, nil
	}

	diag.Phase(ctx, diag.PhaseProvision, "Provision environment")

	env, err := p.provisioner.Run(ctx)
	if err != nil {
		return nil, fail(ctx, err)
	}

	// The lock lives inside the directory it guards, so it can only be
	// taken once provisioning has created that directory. Creation itself
	// is idempotent and safe to race.
	runLock, err := lock.Acquire(ctx, env.DataRoot)
	if err != nil {
		return nil, fail(ctx, lockFailure(err, env.DataRoot))
	}

	diag.Phase(ctx, diag.PhaseArtifact, "Fetch application")

	artifactPath, err := p.artifacts.Run(ctx, env.DataRoot)
	if err != nil {
		releaseLock(ctx, runLock)
		return nil, fail(ctx, err)
	}

	// The lock covers provisioning and fetch only. The application may run
	// for hours and must not block the next launcher invocation.
	releaseLock(ctx, runLock)

	diag.Phase(ctx, diag.PhaseLaunch, "Launch")

	result, err := p.launcher.Run(ctx, env, artifactPath)
	if err != nil {
		return nil, fail(ctx, err)
	}

	diag.ReportSuccess(ctx, env.DataRoot)

	return &Outcome{
		DataDir:     env.DataRoot,
		AppExitCode: result.ExitCode,
	}, nil
}

// loadConfig reads the settings file and applies command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, diag.NewFailure("Load settings", err,
			"Fix or delete the settings file, defaults are built in")
	}

	cfg.DevMode = opts.DevMode
	cfg.LocalArtifact = opts.LocalArtifact

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	return cfg, nil
}

// fail renders the fatal block when the error carries one. Interruptions
// and other plain errors pass through silently.
func fail(ctx context.Context, err error) error {
	var failure *diag.Failure
	if errors.As(err, &failure) {
		failure.ReportFatal(ctx)
	}

	return err
}

// lockFailure shapes the concurrent-run rejection with its remedies.
func lockFailure(err error, dataRoot string) error {
	if !errors.Is(err, lock.ErrAlreadyRunning) {
		return diag.NewFailure("Acquire run lock", err,
			"Check permissions on "+dataRoot)
	}

	return diag.NewFailure("Acquire run lock", err,
		"Wait for the other launcher to finish",
		"Delete "+filepath.Join(dataRoot, lock.Filename)+" if no launcher is running")
}

// releaseLock logs instead of failing: the pipeline outcome stands either
// way.
func releaseLock(ctx context.Context, l *lock.Lock) {
	if err := l.Release(); err != nil {
		logger.WarnKV(ctx, "Could not release run lock", "error", err)
	}
}
