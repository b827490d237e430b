//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/greengrassv2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/oshokin/greengrass-home-assistant/internal/cloud"
	"github.com/oshokin/greengrass-home-assistant/internal/config"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

// Clients bundles the AWS service clients for one region.
type Clients struct {
	// Region the clients are bound to.
	Region string

	Secrets    *secretsmanager.Client
	Greengrass *greengrassv2.Client
	S3         *s3.Client
	STS        *sts.Client
}

// Dial resolves AWS configuration for region using the endpoint and timeout
// overrides from settings. No request is sent until a client is used.
func Dial(ctx context.Context, settings *config.Config, region string, opts ...cloud.Option) (*Clients, error) {
	options := append([]cloud.Option{
		cloud.WithCallTimeout(settings.CallTimeout),
		cloud.WithEndpoint(settings.Endpoint),
	}, opts...)

	cfg, err := cloud.LoadConfig(ctx, region, options...)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Resolved AWS configuration", "region", region, "endpoint", settings.Endpoint)

	return NewClients(cfg, settings.Endpoint != ""), nil
}

// NewClients creates the service clients from cfg. Emulated endpoints
// usually need path-style bucket addressing.
func NewClients(cfg aws.Config, pathStyle bool) *Clients {
	return &Clients{
		Region:     cfg.Region,
		Secrets:    secretsmanager.NewFromConfig(cfg),
		Greengrass: greengrassv2.NewFromConfig(cfg),
		S3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = pathStyle
		}),
		STS: sts.NewFromConfig(cfg),
	}
}

// AccountID returns the account of the current credentials.
func (c *Clients) AccountID(ctx context.Context) (string, error) {
	return cloud.AccountID(ctx, c.STS)
}
