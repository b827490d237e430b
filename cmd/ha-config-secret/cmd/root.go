package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/service/configsecret"
	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

var (
	// configPath to the settings YAML file.
	configPath string
	// outputFile receives the packed bundle instead of Secrets Manager.
	outputFile string

	// rootCmd represents the base command for storing the configuration secret.
	rootCmd = &cobra.Command{
		Use:   "ha-config-secret [region]",
		Short: "Create or update the secret holding the Home Assistant configuration files",
		Long: `Packs every file with an extension under the secrets directory into one JSON
document and stores it in Secrets Manager, creating the secret on first use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &configsecret.Options{
				ConfigPath: configPath,
				Region:     args[0],
				OutputFile: outputFile,
			}

			return configsecret.Run(ctx, options)
		},
	}
)

// Execute runs the ha-config-secret CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the packed bundle to this file instead")
}
