package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// DefaultDescriptorFilename is the GDK configuration file read by ha-build and ha-deploy.
const DefaultDescriptorFilename = "gdk-config.json"

// NextPatchVersion asks GDK to pick the next patch version at publish time.
const NextPatchVersion = "NEXT_PATCH"

var (
	// errSingleComponent is returned when the descriptor does not name exactly one component.
	errSingleComponent = errors.New("descriptor must contain exactly one component")
	// errDescriptorField is returned when a required descriptor field is empty.
	errDescriptorField = errors.New("descriptor field is empty")
)

// Descriptor is the subset of the GDK configuration used by the tools.
type Descriptor struct {
	// Name is the component name.
	Name string
	// Version is the component version, possibly NEXT_PATCH.
	Version string
	// Region is the AWS region the component is published to.
	Region string
}

type gdkFile struct {
	Component map[string]gdkComponent `json:"component"`
}

type gdkComponent struct {
	Version string `json:"version"`
	Publish struct {
		Bucket string `json:"bucket"`
		Region string `json:"region"`
	} `json:"publish"`
}

// LoadDescriptor reads the GDK configuration file at path.
func LoadDescriptor(path string) (*Descriptor, error) {
	if path == "" {
		path = DefaultDescriptorFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	var file gdkFile
	if err = json.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	if len(file.Component) != 1 {
		return nil, fmt.Errorf("%s has %d components: %w", path, len(file.Component), errSingleComponent)
	}

	var desc Descriptor

	for name, component := range file.Component {
		desc = Descriptor{
			Name:    name,
			Version: component.Version,
			Region:  component.Publish.Region,
		}
	}

	switch {
	case desc.Name == "":
		return nil, fmt.Errorf("component name: %w", errDescriptorField)
	case desc.Version == "":
		return nil, fmt.Errorf("component version: %w", errDescriptorField)
	case desc.Region == "":
		return nil, fmt.Errorf("publish region: %w", errDescriptorField)
	}

	return &desc, nil
}
