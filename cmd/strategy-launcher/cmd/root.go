package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stellarr-r/strategy-launcher/internal/config"
	"github.com/stellarr-r/strategy-launcher/internal/logger"
	"github.com/stellarr-r/strategy-launcher/internal/service/launcher"
	"github.com/stellarr-r/strategy-launcher/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// devMode disables self-update and launches a local artifact.
	devMode bool
	// dataDir overrides the data root location.
	dataDir string
	// localArtifact is launched instead of the remote fetch in development mode.
	localArtifact string
	// logLevel of the launcher's own output.
	logLevel string

	// rootCmd represents the base command that runs the launch pipeline.
	rootCmd = &cobra.Command{
		Use:   "strategy-launcher",
		Short: "Keep the Strategy Analyzer current and launch it",
		Long: `Bootstraps the Strategy Analyzer trading calendar.

Each run checks for a newer launcher binary and restarts through a relay
when one is published, provisions the per-user data directory, refreshes
trading_calendar.py from the configured URL (falling back to the cached
copy when offline) and starts it under the Python interpreter.

The launcher exits 0 once the application has been started, whatever the
application itself returns; 1 signals a setup failure described in the
output.`,
		Args: cobra.NoArgs,
		// Fatal conditions already render their own diagnostic block.
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Unknown values fall back to the info level.
			level, _ := logger.ParseLogLevel(logLevel)
			logger.SetLevel(level)

			options := &launcher.Options{
				ConfigPath:    configPath,
				DevMode:       devMode,
				DataDir:       dataDir,
				LocalArtifact: localArtifact,
			}

			_, err := launcher.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the strategy-launcher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file")
	rootCmd.Flags().BoolVarP(&devMode, "dev", "d", false, "development mode: skip self-update and launch a local artifact")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "override the data directory location")
	rootCmd.Flags().StringVar(&localArtifact, "artifact", "", "local artifact to launch in development mode")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "launcher log level (debug, info, warn, error)")
}
