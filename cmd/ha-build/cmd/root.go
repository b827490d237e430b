package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/service/build"
	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string

	// rootCmd represents the GDK custom build command.
	rootCmd = &cobra.Command{
		Use:   "ha-build",
		Short: "Build the component recipe and artifacts for the Greengrass Development Kit",
		Long: `Custom build step for "gdk component build". Reads the component name, version
and region from gdk-config.json, fills recipe.yaml and archives the artifacts
directory into greengrass-build.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return build.Run(ctx, &build.Options{ConfigPath: configPath})
		},
	}
)

// Execute runs the ha-build CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	logger.AttachCobraLogLevelFlag(rootCmd)

	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file")
}
