package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	"github.com/oshokin/greengrass-home-assistant/internal/config"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/recipe"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/artifact"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/component"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/secret"
	"github.com/oshokin/greengrass-home-assistant/internal/service/common"
)

// Options contains inputs for the ha-publish entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file.
	ConfigPath string
	// Version of the component to create, e.g. 1.0.0.
	Version string
	// Region to publish to.
	Region string
}

// ErrComponentVersionExists is returned when the requested version is already registered.
var ErrComponentVersionExists = errors.New("component version already exists")

type (
	secretReader interface {
		Get(ctx context.Context) (*domain.Secret, error)
	}

	componentRegistry interface {
		VersionExists(ctx context.Context, name, version string) bool
		CreateVersion(ctx context.Context, recipe []byte) (*domain.ComponentVersion, error)
	}

	artifactStore interface {
		Name() string
		EnsureExists(ctx context.Context) error
		Upload(ctx context.Context, path, key string) error
	}
)

// runner publishes one component version.
type runner struct {
	settings  *config.Config
	version   string
	secrets   secretReader
	registry  componentRegistry
	artifacts artifactStore
}

// Run executes the publish workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ha-publish")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	clients, err := common.Dial(ctx, settings, opts.Region)
	if err != nil {
		return err
	}

	account, err := clients.AccountID(ctx)
	if err != nil {
		return err
	}

	bucket := cloud.BucketName(settings.BucketPrefix, account, opts.Region)

	r := &runner{
		settings:  settings,
		version:   opts.Version,
		secrets:   secret.NewStore(clients.Secrets, settings.SecretName, settings.SecretDescription),
		registry:  component.NewRegistry(clients.Greengrass, opts.Region, account),
		artifacts: artifact.NewStore(clients.S3, bucket, opts.Region),
	}

	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	ctx = logger.WithKV(ctx, "version", r.version)

	stored, err := r.secrets.Get(ctx)
	if err != nil {
		return err
	}

	if r.registry.VersionExists(ctx, r.settings.ComponentName, r.version) {
		return fmt.Errorf("%s %s: %w", r.settings.ComponentName, r.version, ErrComponentVersionExists)
	}

	if err = r.artifacts.EnsureExists(ctx); err != nil {
		return err
	}

	if err = os.MkdirAll(r.settings.BuildDir, 0o750); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}

	rendered, err := r.createRecipe(ctx, stored.ARN)
	if err != nil {
		return err
	}

	archive, err := r.createArtifacts(ctx)
	if err != nil {
		return err
	}

	key := r.version + "/" + filepath.Base(archive)
	if err = r.artifacts.Upload(ctx, archive, key); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Creating component version", "component", r.settings.ComponentName)

	created, err := r.registry.CreateVersion(ctx, rendered)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Created component version", "arn", created.ARN, "status", created.Status)

	r.printNextSteps(ctx, stored.ARN)

	return nil
}

func (r *runner) createRecipe(ctx context.Context, secretARN string) ([]byte, error) {
	path := filepath.Join(r.settings.BuildDir, r.settings.ComponentName+"-"+r.version+".json")

	logger.InfoKV(ctx, "Creating recipe", "path", path)

	image, err := recipe.ComposeImage(r.settings.ComposeFile, r.settings.ComposeService)
	if err != nil {
		return nil, err
	}

	template, err := recipe.ReadTemplate(filepath.Join(r.settings.RecipesDir, r.settings.ComponentName+".json"))
	if err != nil {
		return nil, err
	}

	rendered, err := template.RenderJSON(
		recipe.Substitution{Token: recipe.TokenComponentVersion, Value: r.version},
		recipe.Substitution{Token: recipe.TokenSecretARN, Value: secretARN},
		recipe.Substitution{Token: recipe.TokenBucketName, Value: r.artifacts.Name()},
		recipe.Substitution{Token: recipe.TokenDockerImage, Value: image},
	)
	if err != nil {
		return nil, err
	}

	if err = recipe.Write(path, rendered); err != nil {
		return nil, err
	}

	return rendered, nil
}

func (r *runner) createArtifacts(ctx context.Context) (string, error) {
	path := filepath.Join(r.settings.BuildDir, r.version, r.settings.ArchiveName+".zip")

	logger.InfoKV(ctx, "Creating artifacts archive", "path", path)

	if err := recipe.Archive(r.settings.ArtifactsDir, path); err != nil {
		return "", err
	}

	return path, nil
}

// printNextSteps logs the permissions the device role needs before deploying.
func (r *runner) printNextSteps(ctx context.Context, secretARN string) {
	var builder strings.Builder

	builder.WriteString("Before deploying the component:\n")
	builder.WriteString("1) Add s3:GetObject for arn:aws:s3:::")
	builder.WriteString(r.artifacts.Name())
	builder.WriteString(" to the Greengrass device role\n")
	builder.WriteString("2) Add secretsmanager:GetSecretValue for ")
	builder.WriteString(secretARN)
	builder.WriteString(" to the Greengrass device role")

	logger.Info(ctx, builder.String())
}
