package install

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/oshokin/greengrass-home-assistant/internal/bundle"
	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/secret"
	"github.com/oshokin/greengrass-home-assistant/internal/service/common"
)

// Options contains inputs for the ha-install entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file.
	ConfigPath string
	// SecretID is the name or ARN of the configuration secret.
	SecretID string
	// SecretFile, when set, reads the bundle from a local file instead of the cloud.
	SecretFile string
	// Region overrides the region taken from the secret ARN.
	Region string
}

// runner writes the secret files to disk.
type runner struct {
	source     secret.Source
	secretID   string
	installDir string
}

// Run executes the install workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ha-install")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	source, err := newSource(ctx, settings, opts)
	if err != nil {
		return err
	}

	r := &runner{
		source:     source,
		secretID:   opts.SecretID,
		installDir: settings.InstallDir,
	}

	return r.run(ctx)
}

func newSource(ctx context.Context, settings *config.Config, opts *Options) (secret.Source, error) {
	if opts.SecretFile != "" {
		return secret.NewFileSource(opts.SecretFile), nil
	}

	region := opts.Region
	if region == "" {
		region, _ = cloud.RegionFromARN(opts.SecretID)
	}

	// The device runtime exports the region to component processes.
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	clients, err := common.Dial(ctx, settings, region)
	if err != nil {
		return nil, err
	}

	return secret.NewCloudSource(clients.Secrets), nil
}

func (r *runner) run(ctx context.Context) error {
	logger.InfoKV(ctx, "Refreshing and getting secret", "secret_id", r.secretID)

	blob, err := r.source.Fetch(ctx, r.secretID, true)
	if err != nil {
		return err
	}

	files, err := bundle.Unpack(blob)
	if err != nil {
		return fmt.Errorf("secret %s: %w", r.secretID, err)
	}

	logger.InfoKV(ctx, "Creating files from secret", "install_dir", r.installDir)

	written, err := bundle.Materialize(files, r.installDir)
	if err != nil {
		return err
	}

	sort.Strings(written)

	for _, name := range written {
		logger.DebugKV(ctx, "Created file", "path", name)
	}

	logger.InfoKV(ctx, "Installed configuration files", "count", len(written))

	return nil
}
