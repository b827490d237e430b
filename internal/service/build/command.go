package build

import (
	"context"
	"path/filepath"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/recipe"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/secret"
	"github.com/oshokin/greengrass-home-assistant/internal/service/common"
)

// Options contains inputs for the ha-build entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file.
	ConfigPath string
}

// secretReader fetches the configuration secret.
type secretReader interface {
	Get(ctx context.Context) (*domain.Secret, error)
}

// runner renders the GDK recipe and archive.
type runner struct {
	settings   *config.Config
	descriptor *config.Descriptor
	secrets    secretReader
}

// Run executes the GDK build workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ha-build")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	descriptor, err := config.LoadDescriptor(settings.DescriptorFile)
	if err != nil {
		return err
	}

	clients, err := common.Dial(ctx, settings, descriptor.Region)
	if err != nil {
		return err
	}

	r := &runner{
		settings:   settings,
		descriptor: descriptor,
		secrets:    secret.NewStore(clients.Secrets, settings.SecretName, settings.SecretDescription),
	}

	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	stored, err := r.secrets.Get(ctx)
	if err != nil {
		return err
	}

	if err = r.createRecipe(ctx, stored.ARN); err != nil {
		return err
	}

	archive := filepath.Join(r.settings.GDKBuildDir, "artifacts", r.descriptor.Name, r.descriptor.Version,
		r.settings.ArchiveName+".zip")

	logger.InfoKV(ctx, "Creating artifacts archive", "path", archive)

	if err = recipe.Archive(r.settings.ArtifactsDir, archive); err != nil {
		return err
	}

	logger.Info(ctx, "Created artifacts archive")

	return nil
}

func (r *runner) createRecipe(ctx context.Context, secretARN string) error {
	path := filepath.Join(r.settings.GDKBuildDir, "recipes", "recipe.yaml")

	logger.InfoKV(ctx, "Creating recipe", "path", path)

	image, err := recipe.ComposeImage(r.settings.ComposeFile, r.settings.ComposeService)
	if err != nil {
		return err
	}

	template, err := recipe.ReadTemplate(r.settings.GDKRecipeTemplate)
	if err != nil {
		return err
	}

	substitutions := []recipe.Substitution{
		{Token: recipe.TokenGDKComponentName, Value: r.descriptor.Name},
	}

	// GDK fills the version itself when it picks the next patch.
	if r.descriptor.Version != config.NextPatchVersion {
		substitutions = append(substitutions,
			recipe.Substitution{Token: recipe.TokenGDKComponentVersion, Value: r.descriptor.Version})
	}

	substitutions = append(substitutions,
		recipe.Substitution{Token: recipe.TokenSecretARN, Value: secretARN},
		recipe.Substitution{Token: recipe.TokenDockerImage, Value: image},
	)

	if err = recipe.Write(path, []byte(template.Fill(substitutions...))); err != nil {
		return err
	}

	logger.Info(ctx, "Created recipe")

	return nil
}
