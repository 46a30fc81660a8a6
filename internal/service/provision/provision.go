package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/diag"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

// Environment describes the provisioned surroundings the later phases use.
type Environment struct {
	// DataRoot holds the cached artifact and the data subdirectory.
	DataRoot string
	// DataDir is the application-owned subdirectory inside DataRoot.
	DataDir string
	// Interpreter is the resolved path of the interpreter binary.
	Interpreter string
}

const (
	// dataSubdirName is owned by the launched application; the launcher
	// creates it and never touches its contents.
	dataSubdirName = "data"

	// directoryPermissions applies to every directory the launcher creates.
	directoryPermissions = 0o755

	// failureStage names this phase in fatal diagnostics.
	failureStage = "Provision environment"
)

// errInterpreterNotFound is returned when no configured interpreter resolves.
var errInterpreterNotFound = errors.New("no usable interpreter found")

// Provisioner prepares the data directory and resolves the interpreter.
type Provisioner struct {
	cfg *config.Config

	// Seams for tests: PATH lookups and the per-user directory are
	// host-global state.
	lookPath      func(name string) (string, error)
	userConfigDir func() (string, error)
}

// New returns a Provisioner bound to the provided settings.
func New(cfg *config.Config) *Provisioner {
	return &Provisioner{
		cfg:           cfg,
		lookPath:      exec.LookPath,
		userConfigDir: os.UserConfigDir,
	}
}

// Run creates the data layout and resolves the interpreter. Failures here
// are fatal for the pipeline and carry remedy text for the user.
func (p *Provisioner) Run(ctx context.Context) (*Environment, error) {
	ctx = logger.WithName(ctx, "provision")

	root, err := p.dataRoot()
	if err != nil {
		return nil, diag.NewFailure(failureStage, err,
			"Pass --data-dir to choose a writable location")
	}

	dataDir := filepath.Join(root, dataSubdirName)

	for _, dir := range []string{root, dataDir} {
		if err = os.MkdirAll(dir, directoryPermissions); err != nil {
			return nil, diag.NewFailure(failureStage,
				fmt.Errorf("create directory %s: %w", dir, err),
				"Check permissions on the parent directory",
				"Pass --data-dir to choose a writable location")
		}
	}

	logger.InfoKV(ctx, "Data directory ready", "path", root)

	interpreter, err := p.resolveInterpreter(ctx)
	if err != nil {
		return nil, diag.NewFailure(failureStage, err,
			"Install Python 3 from https://www.python.org/downloads/",
			"Make sure the interpreter is on your PATH")
	}

	logger.InfoKV(ctx, "Interpreter resolved", "path", interpreter)

	return &Environment{
		DataRoot:    root,
		DataDir:     dataDir,
		Interpreter: interpreter,
	}, nil
}

// dataRoot picks the configured override when set, the per-user default
// location otherwise.
func (p *Provisioner) dataRoot() (string, error) {
	if p.cfg.DataDir != "" {
		return p.cfg.DataDir, nil
	}

	base, err := p.userConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}

	return filepath.Join(base, config.AppDirName), nil
}

// resolveInterpreter probes the configured interpreter names in order and
// returns the first hit.
func (p *Provisioner) resolveInterpreter(ctx context.Context) (string, error) {
	for _, name := range p.cfg.Interpreters {
		path, err := p.lookPath(name)
		if err == nil {
			return path, nil
		}

		logger.DebugKV(ctx, "Interpreter candidate not found", "name", name)
	}

	return "", fmt.Errorf("%w (tried: %s)", errInterpreterNotFound, strings.Join(p.cfg.Interpreters, ", "))
}
