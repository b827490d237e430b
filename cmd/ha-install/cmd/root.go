package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/service/install"
	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// secretFile is a local bundle used instead of Secrets Manager.
	secretFile string
	// region overrides the region taken from the secret ARN.
	region string

	// rootCmd represents the on-device install command.
	rootCmd = &cobra.Command{
		Use:   "ha-install [secret-id]",
		Short: "Write the Home Assistant configuration files from the configuration secret",
		Long: `Runs on the Greengrass core device before Home Assistant starts. Fetches the
configuration secret and creates its files under the install directory.`,
		Example: "ha-install arn:aws:secretsmanager:REGION:ACCOUNT:secret:greengrass-home-assistant-ID",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &install.Options{
				ConfigPath: configPath,
				SecretID:   args[0],
				SecretFile: secretFile,
				Region:     region,
			}

			return install.Run(ctx, options)
		},
	}
)

// Execute runs the ha-install CLI and exits with non-zero status on error.
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
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to settings file")
	rootCmd.Flags().StringVar(&secretFile, "secret-file", "", "read the configuration bundle from this file")
	rootCmd.Flags().StringVar(&region, "region", "", "AWS region, defaults to the region of the secret ARN")
}
