package launcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/diag"
	"github.com/stellarr-r/strategy-launcher/internal/lock"
	"github.com/stellarr-r/strategy-launcher/internal/service/launch"
	"github.com/stellarr-r/strategy-launcher/internal/service/provision"
)

type fakeUpdater struct {
	restart bool
	err     error
	calls   int
}

func (f *fakeUpdater) Run(context.Context) (bool, error) {
	f.calls++
	return f.restart, f.err
}

type fakeProvisioner struct {
	env   *provision.Environment
	err   error
	calls int
}

func (f *fakeProvisioner) Run(context.Context) (*provision.Environment, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.env, nil
}

type fakeArtifacts struct {
	path     string
	err      error
	calls    int
	dataRoot string
}

func (f *fakeArtifacts) Run(_ context.Context, dataRoot string) (string, error) {
	f.calls++
	f.dataRoot = dataRoot

	if f.err != nil {
		return "", f.err
	}

	return f.path, nil
}

type fakeLauncher struct {
	result       *launch.Result
	err          error
	calls        int
	artifactPath string

	// lockPath, when set, records whether the run lock still existed at
	// launch time.
	lockPath string
	lockHeld bool
}

func (f *fakeLauncher) Run(_ context.Context, _ *provision.Environment, artifactPath string) (*launch.Result, error) {
	f.calls++
	f.artifactPath = artifactPath

	if f.lockPath != "" {
		_, statErr := os.Stat(f.lockPath)
		f.lockHeld = statErr == nil
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.result, nil
}

// testPipeline builds a pipeline over a temp dir with happy-path fakes.
func testPipeline(t *testing.T) (*Pipeline, *fakeUpdater, *fakeProvisioner, *fakeArtifacts, *fakeLauncher) {
	t.Helper()

	root := t.TempDir()
	env := &provision.Environment{
		DataRoot:    root,
		DataDir:     filepath.Join(root, "data"),
		Interpreter: "/usr/bin/python3",
	}

	updater := &fakeUpdater{}
	provisioner := &fakeProvisioner{env: env}
	artifacts := &fakeArtifacts{path: filepath.Join(root, "trading_calendar.py")}
	apps := &fakeLauncher{
		result:   &launch.Result{},
		lockPath: filepath.Join(root, lock.Filename),
	}

	p := &Pipeline{
		cfg:         &config.Config{},
		updater:     updater,
		provisioner: provisioner,
		artifacts:   artifacts,
		launcher:    apps,
	}

	return p, updater, provisioner, artifacts, apps
}

// TestPipelineFullRun drives all four phases and releases the lock before
// the launch.
func TestPipelineFullRun(t *testing.T) {
	t.Parallel()

	p, updater, provisioner, artifacts, apps := testPipeline(t)

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, outcome.RestartScheduled)
	require.Equal(t, provisioner.env.DataRoot, outcome.DataDir)
	require.Zero(t, outcome.AppExitCode)

	require.Equal(t, 1, updater.calls)
	require.Equal(t, 1, provisioner.calls)
	require.Equal(t, 1, artifacts.calls)
	require.Equal(t, 1, apps.calls)

	require.Equal(t, provisioner.env.DataRoot, artifacts.dataRoot)
	require.Equal(t, artifacts.path, apps.artifactPath)

	// Released before the launch and still gone afterwards.
	require.False(t, apps.lockHeld)
	_, err = os.Stat(apps.lockPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestPipelineUpdateScheduled stops after the self-update phase.
func TestPipelineUpdateScheduled(t *testing.T) {
	t.Parallel()

	p, updater, provisioner, artifacts, apps := testPipeline(t)
	updater.restart = true

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, outcome.RestartScheduled)
	require.Empty(t, outcome.DataDir)

	require.Zero(t, provisioner.calls)
	require.Zero(t, artifacts.calls)
	require.Zero(t, apps.calls)
}

// TestPipelineProvisionFatal stops before any fetch.
func TestPipelineProvisionFatal(t *testing.T) {
	t.Parallel()

	p, _, provisioner, artifacts, apps := testPipeline(t)
	provisioner.err = diag.NewFailure("Provision environment",
		os.ErrPermission, "Pick a writable directory")

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, os.ErrPermission)

	require.Zero(t, artifacts.calls)
	require.Zero(t, apps.calls)
}

// TestPipelineArtifactFatalReleasesLock never launches and leaves no lock.
func TestPipelineArtifactFatalReleasesLock(t *testing.T) {
	t.Parallel()

	p, _, _, artifacts, apps := testPipeline(t)
	artifacts.err = diag.NewFailure("Fetch application",
		os.ErrDeadlineExceeded, "Check your network connection")

	_, err := p.Run(context.Background())
	require.Error(t, err)

	require.Zero(t, apps.calls)

	_, err = os.Stat(apps.lockPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestPipelineLockContention rejects a second run against the same root.
func TestPipelineLockContention(t *testing.T) {
	t.Parallel()

	p, _, provisioner, artifacts, _ := testPipeline(t)

	// A live process (this test) already owns the lock.
	lockPath := filepath.Join(provisioner.env.DataRoot, lock.Filename)
	require.NoError(t, os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0o600))

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, lock.ErrAlreadyRunning)
	require.Zero(t, artifacts.calls)
}

// TestPipelineReportsAppExitCode surfaces the child's code without failing.
func TestPipelineReportsAppExitCode(t *testing.T) {
	t.Parallel()

	p, _, _, _, apps := testPipeline(t)
	apps.result = &launch.Result{ExitCode: 3}

	outcome, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, outcome.AppExitCode)
}

// TestPipelineCancelPassthrough propagates interruption unchanged.
func TestPipelineCancelPassthrough(t *testing.T) {
	t.Parallel()

	p, updater, _, _, _ := testPipeline(t)
	updater.err = context.Canceled

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}

// TestLoadConfigOverrides applies command line values over the file.
func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, &config.Config{
		ArtifactURL: "https://mirror.local/trading_calendar.py",
	}))

	cfg, err := loadConfig(&Options{
		ConfigPath:    path,
		DevMode:       true,
		DataDir:       "/custom/root",
		LocalArtifact: "/tmp/wip.py",
	})
	require.NoError(t, err)
	require.True(t, cfg.DevMode)
	require.Equal(t, "/custom/root", cfg.DataDir)
	require.Equal(t, "/tmp/wip.py", cfg.LocalArtifact)
	require.Equal(t, "https://mirror.local/trading_calendar.py", cfg.ArtifactURL)
}

// TestLoadConfigBadFile is fatal with remedy text.
func TestLoadConfigBadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("launcher_url: [broken"), 0o600))

	_, err := loadConfig(&Options{ConfigPath: path})
	require.Error(t, err)

	var failure *diag.Failure
	require.ErrorAs(t, err, &failure)
	require.NotEmpty(t, failure.Remedies)
}
