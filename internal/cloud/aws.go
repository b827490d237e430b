package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/oshokin/greengrass-home-assistant/internal/version"
)

// options collects the overrides applied on top of the default AWS configuration chain.
type options struct {
	// callTimeout bounds a single HTTP request; zero keeps the SDK default.
	callTimeout time.Duration
	// endpoint replaces the service endpoints, e.g. a local emulator.
	endpoint string
	// accessKeyID and secretAccessKey replace the credential chain when both are set.
	accessKeyID     string
	secretAccessKey string
}

// Option configures LoadConfig.
type Option func(*options)

// WithCallTimeout sets a timeout for every request sent by clients built from the config.
func WithCallTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.callTimeout = timeout
		}
	}
}

// WithEndpoint points every client at the given base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithStaticCredentials bypasses the default credential chain.
func WithStaticCredentials(accessKeyID, secretAccessKey string) Option {
	return func(o *options) {
		o.accessKeyID = accessKeyID
		o.secretAccessKey = secretAccessKey
	}
}

var (
	// errRegionRequired is returned when no region is provided.
	errRegionRequired = errors.New("region must be provided")
	// errNoAccount is returned when STS does not report an account.
	errNoAccount = errors.New("caller identity has no account")
)

// LoadConfig resolves AWS configuration for region from the default chain
// (environment, shared config files, instance roles) plus the given overrides.
func LoadConfig(ctx context.Context, region string, opts ...Option) (aws.Config, error) {
	if region == "" {
		return aws.Config{}, errRegionRequired
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loadOptions := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithAppID(version.AppID()),
	}

	if o.callTimeout > 0 {
		loadOptions = append(loadOptions,
			config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(o.callTimeout)))
	}

	if o.accessKeyID != "" && o.secretAccessKey != "" {
		loadOptions = append(loadOptions,
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(o.accessKeyID, o.secretAccessKey, "")))
	}

	if o.endpoint != "" {
		loadOptions = append(loadOptions, config.WithBaseEndpoint(o.endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}

	return cfg, nil
}

// IdentityAPI is the STS subset used to look up the caller's account.
type IdentityAPI interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// AccountID returns the AWS account of the current credentials.
func AccountID(ctx context.Context, api IdentityAPI) (string, error) {
	identity, err := api.GetCallerIdentity(ctx, new(sts.GetCallerIdentityInput))
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}

	account := aws.ToString(identity.Account)
	if account == "" {
		return "", errNoAccount
	}

	return account, nil
}
