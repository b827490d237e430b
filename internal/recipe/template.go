package recipe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// Placeholders recognized in recipe templates.
const (
	TokenComponentVersion = "$COMPONENT_VERSION"
	TokenSecretARN        = "$SECRET_ARN"
	TokenBucketName       = "$BUCKET_NAME"
	TokenDockerImage      = "$DOCKER_IMAGE"

	// The GDK template uses bare tokens for the name and version.
	TokenGDKComponentName    = "COMPONENT_NAME"
	TokenGDKComponentVersion = "COMPONENT_VERSION"
)

const jsonIndent = "  "

// Substitution replaces every occurrence of Token with Value.
type Substitution struct {
	Token string
	Value string
}

// Template is the raw text of a recipe template.
type Template string

// ReadTemplate loads a template from path.
func ReadTemplate(path string) (Template, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read recipe template: %w", err)
	}

	return Template(contents), nil
}

// Fill applies the substitutions in order. Tokens are matched literally,
// missing tokens are ignored and unknown placeholders are left as they are.
func (t Template) Fill(substitutions ...Substitution) string {
	result := string(t)

	for _, s := range substitutions {
		result = strings.ReplaceAll(result, s.Token, s.Value)
	}

	return result
}

// RenderJSON fills the template, checks that the result is a JSON document and
// re-indents it with two spaces.
func (t Template) RenderJSON(substitutions ...Substitution) ([]byte, error) {
	filled := t.Fill(substitutions...)

	var out bytes.Buffer
	if err := json.Indent(&out, []byte(filled), "", jsonIndent); err != nil {
		return nil, fmt.Errorf("render JSON recipe: %w", err)
	}

	return out.Bytes(), nil
}

// Write stores a rendered recipe at path, creating its directory.
func Write(path string, recipe []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create recipe directory: %w", err)
	}

	if err := os.WriteFile(path, recipe, 0o600); err != nil {
		return fmt.Errorf("write recipe: %w", err)
	}

	return nil
}
