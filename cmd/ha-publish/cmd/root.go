package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/service/publish"
	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string

	// rootCmd represents the base command for publishing a component version.
	rootCmd = &cobra.Command{
		Use:   "ha-publish [version] [region]",
		Short: "Create a version of the Home Assistant component",
		Long: `Renders the JSON recipe, uploads the artifacts archive to the artifact bucket
and registers the component version. Fails if the version already exists.

Run ha-config-secret first so that the configuration secret exists.`,
		Example: "ha-publish 1.0.0 ap-southeast-1",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &publish.Options{
				ConfigPath: configPath,
				Version:    args[0],
				Region:     args[1],
			}

			return publish.Run(ctx, options)
		},
	}
)

// Execute runs the ha-publish CLI and exits with non-zero status on error.
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
