package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Source fetches a secret string by id. Refresh asks transports that keep a
// local copy to go back to the cloud first.
type Source interface {
	Fetch(ctx context.Context, id string, refresh bool) (string, error)
}

// ValueAPI is the Secrets Manager subset used by CloudSource.
type ValueAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

// errEmptySecret is returned when a secret has no string value.
var errEmptySecret = errors.New("secret has no string value")

// CloudSource reads secrets directly from Secrets Manager.
// Every call goes to the service, so refresh has no effect.
type CloudSource struct {
	api ValueAPI
}

// NewCloudSource creates a Source backed by Secrets Manager.
func NewCloudSource(api ValueAPI) *CloudSource {
	return &CloudSource{api: api}
}

// Fetch returns the current string value of the secret id (name or ARN).
func (s *CloudSource) Fetch(ctx context.Context, id string, _ bool) (string, error) {
	output, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", id, err)
	}

	if output.SecretString == nil {
		return "", fmt.Errorf("secret %s: %w", id, errEmptySecret)
	}

	return *output.SecretString, nil
}

// FileSource reads a secret blob previously written to disk, e.g. by
// ha-config-secret --output. The id is ignored.
type FileSource struct {
	path string
}

// NewFileSource creates a Source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: filepath.Clean(path)}
}

// Fetch returns the file contents.
func (s *FileSource) Fetch(_ context.Context, _ string, _ bool) (string, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}

	return string(contents), nil
}
