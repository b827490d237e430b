package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
	"github.com/oshokin/greengrass-home-assistant/internal/logger"
)

// API is the Secrets Manager subset used by the store.
type API interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(
		ctx context.Context,
		params *secretsmanager.CreateSecretInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.CreateSecretOutput, error)
	UpdateSecret(
		ctx context.Context,
		params *secretsmanager.UpdateSecretInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.UpdateSecretOutput, error)
	ListSecrets(
		ctx context.Context,
		params *secretsmanager.ListSecretsInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.ListSecretsOutput, error)
}

// ErrSecretNotFound is returned by Get when the secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// Store reads and writes the one secret identified by a fixed name.
type Store struct {
	// api is the Secrets Manager client.
	api API
	// name is the fixed logical secret name.
	name string
	// description is written with every create and update.
	description string
}

// NewStore creates a store for the secret called name.
func NewStore(api API, name, description string) *Store {
	return &Store{
		api:         api,
		name:        name,
		description: description,
	}
}

// Get fetches the current value and ARN of the secret.
func (s *Store) Get(ctx context.Context) (*domain.Secret, error) {
	logger.InfoKV(ctx, "Getting the configuration secret", "secret_name", s.name)

	output, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("get secret %s: %w: %w", s.name, ErrSecretNotFound, err)
		}

		return nil, fmt.Errorf("get secret %s: %w", s.name, err)
	}

	return &domain.Secret{
		Name:      s.name,
		ARN:       aws.ToString(output.ARN),
		Value:     aws.ToString(output.SecretString),
		VersionID: aws.ToString(output.VersionId),
	}, nil
}

// Put updates the secret in place when it exists and creates it otherwise.
func (s *Store) Put(ctx context.Context, value string) (*domain.Secret, error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return nil, err
	}

	if exists {
		return s.update(ctx, value)
	}

	return s.create(ctx, value)
}

// Exists lists every secret in the account and looks for an exact name match.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	paginator := secretsmanager.NewListSecretsPaginator(s.api, new(secretsmanager.ListSecretsInput))

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("list secrets: %w", err)
		}

		for _, entry := range page.SecretList {
			if aws.ToString(entry.Name) == s.name {
				return true, nil
			}
		}
	}

	return false, nil
}

func (s *Store) update(ctx context.Context, value string) (*domain.Secret, error) {
	logger.InfoKV(ctx, "Updating the configuration secret", "secret_name", s.name)

	output, err := s.api.UpdateSecret(ctx, &secretsmanager.UpdateSecretInput{
		SecretId:     aws.String(s.name),
		SecretString: aws.String(value),
		Description:  aws.String(s.description),
	})
	if err != nil {
		return nil, fmt.Errorf("update secret %s: %w", s.name, err)
	}

	logger.InfoKV(ctx, "Successfully updated the configuration secret", "arn", aws.ToString(output.ARN))

	return &domain.Secret{
		Name:      s.name,
		ARN:       aws.ToString(output.ARN),
		Value:     value,
		VersionID: aws.ToString(output.VersionId),
	}, nil
}

func (s *Store) create(ctx context.Context, value string) (*domain.Secret, error) {
	logger.InfoKV(ctx, "Creating the configuration secret", "secret_name", s.name)

	output, err := s.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(s.name),
		SecretString: aws.String(value),
		Description:  aws.String(s.description),
	})
	if err != nil {
		return nil, fmt.Errorf("create secret %s: %w", s.name, err)
	}

	logger.InfoKV(ctx, "Successfully created the configuration secret", "arn", aws.ToString(output.ARN))

	return &domain.Secret{
		Name:      s.name,
		ARN:       aws.ToString(output.ARN),
		Value:     value,
		VersionID: aws.ToString(output.VersionId),
	}, nil
}
