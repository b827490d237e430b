package recipe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var errNoImage = errors.New("service has no image")

type composeFile struct {
	Services map[string]struct {
		Image string `yaml:"image"`
	} `yaml:"services"`
}

// ComposeImage returns the image of service from a docker-compose file.
func ComposeImage(path, service string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read compose file: %w", err)
	}

	var compose composeFile
	if err = yaml.Unmarshal(contents, &compose); err != nil {
		return "", fmt.Errorf("unmarshal compose file %s: %w", path, err)
	}

	image := compose.Services[service].Image
	if image == "" {
		return "", fmt.Errorf("%s in %s: %w", service, path, errNoImage)
	}

	return image, nil
}
