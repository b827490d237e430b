package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/service/deploy"
	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string

	// rootCmd represents the base command for deploying a component version.
	rootCmd = &cobra.Command{
		Use:   "ha-deploy [version] [core-device-thing-name]",
		Short: "Deploy a component version to a Greengrass core device",
		Long: `Revises the latest deployment of the core device so that it runs the given
component version together with the Docker application manager and the secret
manager, then waits for the device to apply it.

Run after "gdk component build" and "gdk component publish".`,
		Example: "ha-deploy 1.0.0 MyCoreDeviceThingName",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &deploy.Options{
				ConfigPath: configPath,
				Version:    args[0],
				ThingName:  args[1],
			}

			return deploy.Run(ctx, options)
		},
	}
)

// Execute runs the ha-deploy CLI and exits with non-zero status on error.
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
