package deploy

import (
	"context"
	"fmt"

	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	"github.com/oshokin/greengrass-home-assistant/internal/config"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/component"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/deployment"
	"github.com/oshokin/greengrass-home-assistant/internal/repository/secret"
	"github.com/oshokin/greengrass-home-assistant/internal/rollout"
	"github.com/oshokin/greengrass-home-assistant/internal/service/common"
)

// Options contains inputs for the ha-deploy entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file.
	ConfigPath string
	// Version of the component to deploy.
	Version string
	// ThingName is the IoT thing name of the core device.
	ThingName string
}

type (
	secretReader interface {
		Get(ctx context.Context) (*domain.Secret, error)
	}

	deploymentFleet interface {
		Latest(ctx context.Context, targetARN string) (*domain.Deployment, error)
		Create(ctx context.Context, d *domain.Deployment) (string, error)
		rollout.StatusFetcher
	}
)

// runner deploys one component version to one device.
type runner struct {
	descriptor  *config.Descriptor
	version     string
	thingName   string
	account     string
	secrets     secretReader
	resolver    rollout.VersionResolver
	fleet       deploymentFleet
	waitOptions []rollout.WaiterOption
}

// Run executes the deployment workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "ha-deploy")

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

	account, err := clients.AccountID(ctx)
	if err != nil {
		return err
	}

	r := &runner{
		descriptor: descriptor,
		version:    opts.Version,
		thingName:  opts.ThingName,
		account:    account,
		secrets:    secret.NewStore(clients.Secrets, settings.SecretName, settings.SecretDescription),
		resolver:   component.NewRegistry(clients.Greengrass, descriptor.Region, account),
		fleet:      deployment.NewFleet(clients.Greengrass),
		waitOptions: []rollout.WaiterOption{
			rollout.WithTimeout(settings.DeploymentTimeout),
			rollout.WithPollInterval(settings.PollInterval),
		},
	}

	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) error {
	stored, err := r.secrets.Get(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Attempting deployment", "version", r.version, "thing", r.thingName)

	current, err := r.latestDeployment(ctx)
	if err != nil {
		return err
	}

	updater := rollout.NewUpdater(r.resolver, r.descriptor.Name, stored.ARN)
	if err = updater.Update(ctx, current, r.version); err != nil {
		return fmt.Errorf("update deployment: %w", err)
	}

	if current.Name == "" {
		current.Name = "Deployment for " + r.thingName
		logger.InfoKV(ctx, "Renaming deployment", "deployment_name", current.Name)
	}

	logger.InfoKV(ctx, "Creating deployment", "deployment_name", current.Name, "components", current.ComponentNames())

	id, err := r.fleet.Create(ctx, current)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Deployment created, waiting for completion", "deployment_id", id)

	elapsed, err := rollout.NewWaiter(r.fleet, r.waitOptions...).Wait(ctx, id)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Deployment completed successfully in %.1f seconds", elapsed.Seconds())

	return nil
}

func (r *runner) latestDeployment(ctx context.Context) (*domain.Deployment, error) {
	targetARN := cloud.ThingARN(r.descriptor.Region, r.account, r.thingName)

	logger.InfoKV(ctx, "Searching for the latest deployment", "target_arn", targetARN)

	current, err := r.fleet.Latest(ctx, targetARN)
	if err != nil {
		return nil, err
	}

	if current.Name != "" {
		logger.InfoKV(ctx, "Found existing named deployment", "deployment_name", current.Name)
	} else {
		logger.InfoKV(ctx, "Found existing unnamed deployment", "deployment_id", current.ID)
	}

	// Some deployments come back without a target.
	if current.TargetARN == "" {
		current.TargetARN = targetARN
	}

	return current, nil
}
