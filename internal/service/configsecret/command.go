package configsecret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/greengrass-home-assistant/internal/bundle"
	"github.com/oshokin/greengrass-home-assistant/internal/config"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/secret"
	"github.com/oshokin/greengrass-home-assistant/internal/service/common"
)

// Options contains inputs for the ha-config-secret entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file.
	ConfigPath string
	// Region is the AWS region holding the secret.
	Region string
	// OutputFile, when set, receives the packed bundle instead of the secret store.
	OutputFile string
}

// secretWriter stores the packed bundle.
type secretWriter interface {
	Put(ctx context.Context, value string) (*domain.Secret, error)
}

// runner packs the secrets directory and hands the bundle to the store.
type runner struct {
	settings *config.Config
	store    secretWriter
	output   string
}

// Run executes the config secret workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ha-config-secret")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	r := &runner{
		settings: settings,
		output:   opts.OutputFile,
	}

	if r.output == "" {
		clients, err := common.Dial(ctx, settings, opts.Region)
		if err != nil {
			return err
		}

		r.store = secret.NewStore(clients.Secrets, settings.SecretName, settings.SecretDescription)
	}

	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	files, err := bundle.Files(r.settings.SecretsDir)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Files to add to secret", "files", files)

	blob, err := bundle.PackFiles(r.settings.SecretsDir, files)
	if err != nil {
		return err
	}

	if r.output != "" {
		return r.writeOutput(ctx, blob)
	}

	stored, err := r.store.Put(ctx, blob)
	if err != nil {
		return fmt.Errorf("store secret: %w", err)
	}

	logger.InfoKV(ctx, "Configuration secret stored", "secret_name", stored.Name, "secret_arn", stored.ARN)

	return nil
}

func (r *runner) writeOutput(ctx context.Context, blob string) error {
	if err := os.MkdirAll(filepath.Dir(r.output), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := os.WriteFile(r.output, []byte(blob), 0o600); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}

	logger.InfoKV(ctx, "Configuration bundle written", "path", r.output)

	return nil
}
