package component

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/greengrassv2"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

// API is the Greengrass subset used by the registry.
type API interface {
	GetComponent(
		ctx context.Context,
		params *greengrassv2.GetComponentInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.GetComponentOutput, error)
	CreateComponentVersion(
		ctx context.Context,
		params *greengrassv2.CreateComponentVersionInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.CreateComponentVersionOutput, error)
	ListComponentVersions(
		ctx context.Context,
		params *greengrassv2.ListComponentVersionsInput,
		optFns ...func(*greengrassv2.Options),
	) (*greengrassv2.ListComponentVersionsOutput, error)
}

// errNoComponentVersions is returned when the registry lists no versions for a component.
var errNoComponentVersions = errors.New("no component versions")

// Registry wraps the component registry of one account and region.
type Registry struct {
	api     API
	region  string
	account string
}

// NewRegistry creates a registry client for the given region and account.
func NewRegistry(api API, region, account string) *Registry {
	return &Registry{
		api:     api,
		region:  region,
		account: account,
	}
}

// VersionExists reports whether name@version is registered. Any error from the
// registry, not-found or otherwise, is treated as "does not exist".
func (r *Registry) VersionExists(ctx context.Context, name, version string) bool {
	arn := cloud.ComponentVersionARN(r.region, r.account, name, version)

	if _, err := r.api.GetComponent(ctx, &greengrassv2.GetComponentInput{Arn: aws.String(arn)}); err != nil {
		logger.DebugKV(ctx, "Component version lookup failed, assuming it does not exist",
			"arn", arn, "code", errorCode(err), "error", err)

		return false
	}

	return true
}

// CreateVersion registers a new component version from an inline recipe.
func (r *Registry) CreateVersion(ctx context.Context, recipe []byte) (*domain.ComponentVersion, error) {
	output, err := r.api.CreateComponentVersion(ctx, &greengrassv2.CreateComponentVersionInput{
		InlineRecipe: recipe,
		ClientToken:  aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, fmt.Errorf("create component version: %w", err)
	}

	created := &domain.ComponentVersion{
		Name:    aws.ToString(output.ComponentName),
		Version: aws.ToString(output.ComponentVersion),
		ARN:     aws.ToString(output.Arn),
	}

	if output.Status != nil {
		created.Status = string(output.Status.ComponentState)
	}

	return created, nil
}

// NewestVersion returns the first version the registry lists for an
// AWS-provided component. The registry lists newest first; no sorting is done here.
func (r *Registry) NewestVersion(ctx context.Context, name string) (string, error) {
	arn := cloud.PublicComponentARN(r.region, name)

	output, err := r.api.ListComponentVersions(ctx, &greengrassv2.ListComponentVersionsInput{
		Arn: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("list component versions for %s: %w", name, err)
	}

	if len(output.ComponentVersions) == 0 {
		return "", fmt.Errorf("%s: %w", name, errNoComponentVersions)
	}

	return aws.ToString(output.ComponentVersions[0].ComponentVersion), nil
}

// errorCode extracts the AWS error code, or "unknown" for transport failures.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return "unknown"
}
