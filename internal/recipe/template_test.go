package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplate_Fill(t *testing.T) {
	t.Parallel()

	tmpl := Template(`name: COMPONENT_NAME
version: COMPONENT_VERSION
secret: $SECRET_ARN
image: $DOCKER_IMAGE
other: $UNKNOWN`)

	got := tmpl.Fill(
		Substitution{Token: TokenGDKComponentName, Value: "FooBar"},
		Substitution{Token: TokenSecretARN, Value: "arn:secret"},
		Substitution{Token: TokenDockerImage, Value: "homeassistant/home-assistant:2024.1"},
		Substitution{Token: TokenBucketName, Value: "not-present"},
	)

	require.Equal(t, `name: FooBar
version: COMPONENT_VERSION
secret: arn:secret
image: homeassistant/home-assistant:2024.1
other: $UNKNOWN`, got)
}

func TestTemplate_Fill_Order(t *testing.T) {
	t.Parallel()

	// The version token contains the bare GDK token, so order decides the result.
	tmpl := Template("$COMPONENT_VERSION")

	require.Equal(t, "1.0.0", tmpl.Fill(Substitution{Token: TokenComponentVersion, Value: "1.0.0"}))
	require.Equal(t, "$2.0.0", tmpl.Fill(
		Substitution{Token: TokenGDKComponentVersion, Value: "2.0.0"},
		Substitution{Token: TokenComponentVersion, Value: "1.0.0"},
	))
}

func TestTemplate_RenderJSON(t *testing.T) {
	t.Parallel()

	tmpl := Template(`{"RecipeFormatVersion":"2020-01-25","ComponentVersion":"$COMPONENT_VERSION",` +
		`"Manifests":[{"Artifacts":[{"URI":"s3://$BUCKET_NAME/$COMPONENT_VERSION/home-assistant.zip"}]}]}`)

	got, err := tmpl.RenderJSON(
		Substitution{Token: TokenComponentVersion, Value: "1.2.3"},
		Substitution{Token: TokenBucketName, Value: "bucket"},
	)
	require.NoError(t, err)
	require.Equal(t, `{
  "RecipeFormatVersion": "2020-01-25",
  "ComponentVersion": "1.2.3",
  "Manifests": [
    {
      "Artifacts": [
        {
          "URI": "s3://bucket/1.2.3/home-assistant.zip"
        }
      ]
    }
  ]
}`, string(got))
}

func TestTemplate_RenderJSON_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Template(`{"version": $COMPONENT_VERSION}`).RenderJSON(
		Substitution{Token: TokenComponentVersion, Value: "1.2.3"},
	)
	require.Error(t, err)
}

func TestReadTemplateAndWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "recipe.yaml")
	require.NoError(t, os.WriteFile(src, []byte("version: COMPONENT_VERSION"), 0o600))

	tmpl, err := ReadTemplate(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "greengrass-build", "recipes", "recipe.yaml")
	require.NoError(t, Write(dst, []byte(tmpl.Fill(Substitution{Token: TokenGDKComponentVersion, Value: "1.0.0"}))))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "version: 1.0.0", string(got))

	_, err = ReadTemplate(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
