package rollout

import (
	"context"
	"fmt"

	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

// AWS-provided components the application depends on.
const (
	DockerApplicationManager = "aws.greengrass.DockerApplicationManager"
	SecretManager            = "aws.greengrass.SecretManager"
)

// VersionResolver looks up the newest published version of an AWS-provided component.
type VersionResolver interface {
	NewestVersion(ctx context.Context, name string) (string, error)
}

// Updater adds the application component and its dependencies to a deployment.
type Updater struct {
	resolver  VersionResolver
	component string
	secretARN string
}

// NewUpdater creates an updater for component, whose configuration is kept in
// the secret identified by secretARN.
func NewUpdater(resolver VersionResolver, component, secretARN string) *Updater {
	return &Updater{
		resolver:  resolver,
		component: component,
		secretARN: secretARN,
	}
}

// Update modifies d in place so that it deploys version of the component:
// missing dependencies are added at their newest version, pinned ones are
// kept, and the secret manager is configured to sync the secret.
func (u *Updater) Update(ctx context.Context, d *domain.Deployment, version string) error {
	if d.Components == nil {
		d.Components = make(map[string]domain.ComponentSpec)
	}

	if !d.HasComponent(DockerApplicationManager) {
		newest, err := u.resolver.NewestVersion(ctx, DockerApplicationManager)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Adding component to the deployment",
			"component", DockerApplicationManager, "version", newest)

		d.Components[DockerApplicationManager] = domain.ComponentSpec{Version: newest}
	}

	if err := u.updateSecretManager(ctx, d); err != nil {
		return err
	}

	if d.HasComponent(u.component) {
		logger.InfoKV(ctx, "Updating component in the deployment", "component", u.component, "version", version)
	} else {
		logger.InfoKV(ctx, "Adding component to the deployment", "component", u.component, "version", version)
	}

	d.Components[u.component] = domain.ComponentSpec{Version: version}

	return nil
}

func (u *Updater) updateSecretManager(ctx context.Context, d *domain.Deployment) error {
	spec, ok := d.Components[SecretManager]
	if !ok {
		newest, err := u.resolver.NewestVersion(ctx, SecretManager)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Adding component to the deployment", "component", SecretManager, "version", newest)

		spec = domain.ComponentSpec{Version: newest}
	}

	merge, added, err := MergeCloudSecret(spec.Merge, u.secretARN)
	if err != nil {
		return fmt.Errorf("configure %s: %w", SecretManager, err)
	}

	if added {
		logger.InfoKV(ctx, "Adding secret to the secret manager configuration", "secret_arn", u.secretARN)
	}

	spec.Merge = merge
	d.Components[SecretManager] = spec

	return nil
}
