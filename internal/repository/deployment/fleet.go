package deployment

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/greengrassv2"
	"github.com/aws/aws-sdk-go-v2/service/greengrassv2/types"
	"github.com/google/uuid"

	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
)

// API is the Greengrass subset used for deployments.
type API interface {
	ListDeployments(
		ctx context.Context,
		params *greengrassv2.ListDeploymentsInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.ListDeploymentsOutput, error)
	GetDeployment(
		ctx context.Context,
		params *greengrassv2.GetDeploymentInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.GetDeploymentOutput, error)
	CreateDeployment(
		ctx context.Context,
		params *greengrassv2.CreateDeploymentInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.CreateDeploymentOutput, error)
}

// ErrNoDeployment is returned when a target has no deployment to update.
var ErrNoDeployment = errors.New("no existing deployment for target")

// Fleet wraps the Greengrass deployment API.
type Fleet struct {
	api API
}

// NewFleet creates a deployment client.
func NewFleet(api API) *Fleet {
	return &Fleet{api: api}
}

// Latest returns the latest deployment for targetARN with its components.
func (f *Fleet) Latest(ctx context.Context, targetARN string) (*domain.Deployment, error) {
	output, err := f.api.ListDeployments(ctx, &greengrassv2.ListDeploymentsInput{
		TargetArn:     aws.String(targetARN),
		HistoryFilter: types.DeploymentHistoryFilterLatestOnly,
		MaxResults:    aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}

	if len(output.Deployments) == 0 {
		return nil, fmt.Errorf("%s: %w", targetARN, ErrNoDeployment)
	}

	return f.Get(ctx, aws.ToString(output.Deployments[0].DeploymentId))
}

// Get fetches one deployment by id.
func (f *Fleet) Get(ctx context.Context, id string) (*domain.Deployment, error) {
	output, err := f.api.GetDeployment(ctx, &greengrassv2.GetDeploymentInput{
		DeploymentId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get deployment %s: %w", id, err)
	}

	return fromOutput(output), nil
}

// Status returns the current status of deployment id.
func (f *Fleet) Status(ctx context.Context, id string) (domain.DeploymentStatus, error) {
	output, err := f.api.GetDeployment(ctx, &greengrassv2.GetDeploymentInput{
		DeploymentId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("get deployment %s: %w", id, err)
	}

	return domain.DeploymentStatus(output.DeploymentStatus), nil
}

// Create submits the deployment as a new revision for its target and returns the new id.
// Deployment policies and IoT job configuration are left at the service defaults.
func (f *Fleet) Create(ctx context.Context, d *domain.Deployment) (string, error) {
	output, err := f.api.CreateDeployment(ctx, &greengrassv2.CreateDeploymentInput{
		TargetArn:      aws.String(d.TargetARN),
		DeploymentName: aws.String(d.Name),
		Components:     toComponents(d.Components),
		ClientToken:    aws.String(uuid.NewString()),
	})
	if err != nil {
		return "", fmt.Errorf("create deployment: %w", err)
	}

	return aws.ToString(output.DeploymentId), nil
}

func fromOutput(output *greengrassv2.GetDeploymentOutput) *domain.Deployment {
	d := &domain.Deployment{
		ID:         aws.ToString(output.DeploymentId),
		Name:       aws.ToString(output.DeploymentName),
		TargetARN:  aws.ToString(output.TargetArn),
		Status:     domain.DeploymentStatus(output.DeploymentStatus),
		Components: make(map[string]domain.ComponentSpec, len(output.Components)),
	}

	for name, spec := range output.Components {
		d.Components[name] = fromSpecification(spec)
	}

	return d
}

func fromSpecification(spec types.ComponentDeploymentSpecification) domain.ComponentSpec {
	result := domain.ComponentSpec{
		Version: aws.ToString(spec.ComponentVersion),
	}

	if update := spec.ConfigurationUpdate; update != nil {
		result.Merge = aws.ToString(update.Merge)
		result.Reset = append([]string(nil), update.Reset...)
	}

	if runWith := spec.RunWith; runWith != nil {
		result.RunWith = &domain.RunWith{
			PosixUser:   aws.ToString(runWith.PosixUser),
			WindowsUser: aws.ToString(runWith.WindowsUser),
		}

		if limits := runWith.SystemResourceLimits; limits != nil {
			result.RunWith.CPUs = limits.Cpus
			result.RunWith.Memory = limits.Memory
		}
	}

	return result
}

func toComponents(components map[string]domain.ComponentSpec) map[string]types.ComponentDeploymentSpecification {
	result := make(map[string]types.ComponentDeploymentSpecification, len(components))

	for name, spec := range components {
		result[name] = toSpecification(spec)
	}

	return result
}

func toSpecification(spec domain.ComponentSpec) types.ComponentDeploymentSpecification {
	result := types.ComponentDeploymentSpecification{
		ComponentVersion: aws.String(spec.Version),
	}

	if spec.Merge != "" || len(spec.Reset) > 0 {
		result.ConfigurationUpdate = &types.ComponentConfigurationUpdate{
			Reset: append([]string(nil), spec.Reset...),
		}

		if spec.Merge != "" {
			result.ConfigurationUpdate.Merge = aws.String(spec.Merge)
		}
	}

	if runWith := spec.RunWith; runWith != nil {
		result.RunWith = &types.ComponentRunWith{
			PosixUser:   optionalString(runWith.PosixUser),
			WindowsUser: optionalString(runWith.WindowsUser),
		}

		if runWith.CPUs > 0 || runWith.Memory > 0 {
			result.RunWith.SystemResourceLimits = &types.SystemResourceLimits{
				Cpus:   runWith.CPUs,
				Memory: runWith.Memory,
			}
		}
	}

	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}

	return aws.String(s)
}
