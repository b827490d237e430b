package configsecret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/greengrass-home-assistant/internal/config"
	domain "github.com/oshokin/greengrass-home-assistant/internal/domain/greengrass"
)

type fakeStore struct {
	values []string
	err    error
}

func (f *fakeStore) Put(_ context.Context, value string) (*domain.Secret, error) {
	f.values = append(f.values, value)
	if f.err != nil {
		return nil, f.err
	}

	return &domain.Secret{Name: "greengrass-home-assistant", ARN: "arn:secret", Value: value}, nil
}

func newSettings(t *testing.T) *config.Config {
	t.Helper()

	settings := config.Default()
	settings.SecretsDir = t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(settings.SecretsDir, "foo"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(settings.SecretsDir, "foo.yml"), []byte("rocinante"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(settings.SecretsDir, "foo", "bar.yml"), []byte("rocinante"), 0o600))

	return settings
}

func TestRunner_PutsBundle(t *testing.T) {
	t.Parallel()

	store := new(fakeStore)
	r := &runner{settings: newSettings(t), store: store}

	require.NoError(t, r.run(context.Background()))
	require.Len(t, store.values, 1)
	require.JSONEq(t, `{"foo.yml":"rocinante","foo/bar.yml":"rocinante"}`, store.values[0])
}

func TestRunner_WritesOutputFile(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "out", "bundle.json")
	r := &runner{settings: newSettings(t), output: output}

	require.NoError(t, r.run(context.Background()))

	contents, err := os.ReadFile(output)
	require.NoError(t, err)
	require.JSONEq(t, `{"foo.yml":"rocinante","foo/bar.yml":"rocinante"}`, string(contents))
}

func TestRunner_Errors(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.SecretsDir = t.TempDir()

	store := new(fakeStore)
	require.Error(t, (&runner{settings: settings, store: store}).run(context.Background()))
	require.Empty(t, store.values)

	store.err = errors.New("access denied")
	err := (&runner{settings: newSettings(t), store: store}).run(context.Background())
	require.ErrorIs(t, err, store.err)
}
