package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/diag"
	"github.com/stellarr-r/strategy-launcher/internal/fetch"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
)

const (
	// artifactFileMode is enough for the interpreter to read the script.
	artifactFileMode os.FileMode = 0o644

	// failureStage names this phase in fatal diagnostics.
	failureStage = "Fetch application"
)

// errNoLocalArtifact is returned in development mode without a local file.
var errNoLocalArtifact = errors.New("no local artifact configured")

// Fetcher keeps the application artifact in the data root current.
type Fetcher struct {
	cfg    *config.Config
	remote *fetch.Fetcher
}

// New returns a Fetcher bound to the provided settings.
func New(cfg *config.Config) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		remote: fetch.New(cfg.Timeout),
	}
}

// Run ensures a usable artifact sits in dataRoot and returns its path.
// A failed fetch falls back to the cached copy when one exists; without a
// cache the failure is fatal. Success always means the file exists with
// contents, no matter what the transfer reported.
func (f *Fetcher) Run(ctx context.Context, dataRoot string) (string, error) {
	ctx = logger.WithName(ctx, "artifact")

	path := filepath.Join(dataRoot, f.cfg.ArtifactName)

	if f.cfg.DevMode {
		if err := f.copyLocal(ctx, path); err != nil {
			return "", diag.NewFailure(failureStage, err,
				"Pass --artifact with the path of the file to test")
		}

		return f.verify(ctx, path)
	}

	if err := f.download(ctx, path); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if cached(path) {
			logger.WarnKV(ctx, "Artifact fetch failed, using cached copy",
				"url", f.cfg.ArtifactURL, "path", path, "error", err)

			return f.verify(ctx, path)
		}

		return "", diag.NewFailure(failureStage,
			fmt.Errorf("download %s: %w", f.cfg.ArtifactURL, err),
			"Check your network connection",
			"Check firewall and proxy settings",
			"Retry once the remote endpoint is reachable")
	}

	logger.InfoKV(ctx, "Fetched application artifact", "url", f.cfg.ArtifactURL)

	return f.verify(ctx, path)
}

// download streams the remote artifact over the cached copy.
func (f *Fetcher) download(ctx context.Context, path string) error {
	body, err := f.remote.Get(ctx, f.cfg.ArtifactURL)
	if err != nil {
		return err
	}

	defer func() {
		_ = body.Close()
	}()

	return apply(body, path)
}

// copyLocal substitutes the remote fetch with a local file in development
// mode.
func (f *Fetcher) copyLocal(ctx context.Context, path string) error {
	if f.cfg.LocalArtifact == "" {
		return errNoLocalArtifact
	}

	local, err := os.Open(filepath.Clean(f.cfg.LocalArtifact))
	if err != nil {
		return err
	}

	defer func() {
		_ = local.Close()
	}()

	if err = apply(local, path); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Copied local artifact", "from", f.cfg.LocalArtifact, "path", path)

	return nil
}

// apply writes the new artifact bytes over path. go-update stages the bytes
// in a scratch file and swaps at the end, so a failed transfer leaves the
// previous artifact untouched.
func apply(contents io.Reader, path string) error {
	// go-update replaces an existing file only; seed an empty one on the
	// first run.
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		if placeholder, err = os.Create(filepath.Clean(path)); err != nil {
			return err
		}

		if err = placeholder.Close(); err != nil {
			return err
		}
	}

	if err := goupdate.Apply(contents, goupdate.Options{
		TargetPath: path,
		TargetMode: artifactFileMode,
	}); err != nil {
		return err
	}

	// Apply can leave a backup behind on some platforms.
	oldPath := path + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// cached reports whether a previously fetched artifact is usable.
func cached(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Size() > 0
}

// verify enforces the observable success condition and logs the size.
func (f *Fetcher) verify(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", diag.NewFailure(failureStage,
			fmt.Errorf("artifact missing after fetch: %w", err),
			"Retry the launch",
			"Check free disk space in the data directory")
	}

	if info.Size() == 0 {
		return "", diag.NewFailure(failureStage,
			fmt.Errorf("artifact %s is empty", path),
			"Retry the launch",
			"Check the artifact URL serves the application file")
	}

	logger.InfoKV(ctx, "Application artifact ready", "path", path, "bytes", info.Size())

	return path, nil
}
