package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the launcher settings. A value is loaded once at startup,
// validated, and then threaded unchanged into every component.
type Config struct {
	// LauncherURL is the URL serving the current launcher binary for this platform.
	LauncherURL string `yaml:"launcher_url"`
	// ArtifactURL is the URL serving the current application artifact.
	ArtifactURL string `yaml:"artifact_url"`
	// ArtifactName is the filename the artifact is cached under in the data root.
	ArtifactName string `yaml:"artifact_name"`
	// Interpreters are the interpreter names probed in order on PATH.
	Interpreters []string `yaml:"interpreters"`
	// DataDir overrides the per-user data root when set.
	DataDir string `yaml:"data_dir"`
	// Timeout is the duration allowed for each remote fetch.
	Timeout time.Duration `yaml:"timeout"`

	// DevMode disables the self-update check and sources the artifact from
	// LocalArtifact. It is set from the command line, not persisted to YAML.
	DevMode bool `yaml:"-"`
	// LocalArtifact is the artifact path used instead of ArtifactURL in
	// development mode. It is set from the command line, not persisted to YAML.
	LocalArtifact string `yaml:"-"`
}

const (
	// DefaultConfigFilename is the default filename for launcher settings.
	DefaultConfigFilename = "strategy-launcher-settings.yaml"

	// AppDirName is the directory created under the user config directory
	// to hold the cached artifact and the application's data.
	AppDirName = "StrategyAnalyzer"

	// DefaultArtifactName is the filename the application artifact is cached under.
	DefaultArtifactName = "trading_calendar.py"

	// DefaultArtifactURL serves the current application artifact.
	DefaultArtifactURL = "https://raw.githubusercontent.com/Stellarr-r/trading-calendar-app/main/trading_calendar.py"

	// defaultReleaseBase hosts the per-platform launcher binaries.
	defaultReleaseBase = "https://github.com/Stellarr-r/trading-calendar-app/releases/latest/download"

	// DefaultTimeout is the default duration for remote fetches.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// DefaultInterpreters are the interpreter names probed when none are configured.
var DefaultInterpreters = []string{"python3", "python"}

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// DefaultLauncherURL returns the release asset URL for the current platform.
func DefaultLauncherURL() string {
	name := fmt.Sprintf("strategy-launcher-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	return defaultReleaseBase + "/" + name
}

// Default returns the built-in settings used when no settings file exists.
func Default() *Config {
	return &Config{
		LauncherURL:  DefaultLauncherURL(),
		ArtifactURL:  DefaultArtifactURL,
		ArtifactName: DefaultArtifactName,
		Interpreters: append([]string(nil), DefaultInterpreters...),
		Timeout:      DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential
// fields. A missing file is not an error: the built-in defaults are returned
// so a bare download of the launcher bootstraps itself on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
// Unset fields receive their built-in defaults so a partial settings file
// only needs to name what it overrides.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.LauncherURL == "" {
		cfg.LauncherURL = DefaultLauncherURL()
	}

	if cfg.ArtifactURL == "" {
		cfg.ArtifactURL = DefaultArtifactURL
	}

	if cfg.ArtifactName == "" {
		cfg.ArtifactName = DefaultArtifactName
	}

	if len(cfg.Interpreters) == 0 {
		cfg.Interpreters = append([]string(nil), DefaultInterpreters...)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if _, err := url.ParseRequestURI(cfg.LauncherURL); err != nil {
		return fmt.Errorf("invalid launcher URL: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.ArtifactURL); err != nil {
		return fmt.Errorf("invalid artifact URL: %w", err)
	}

	return nil
}
