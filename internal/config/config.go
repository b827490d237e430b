package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the tools.
type Config struct {
	// SecretName is the fixed logical name of the configuration secret.
	SecretName string `yaml:"secret_name"`
	// SecretDescription is stored alongside the secret value.
	SecretDescription string `yaml:"secret_description"`
	// ComponentName is the Greengrass component published by ha-publish.
	ComponentName string `yaml:"component_name"`
	// BucketPrefix is combined with account and region into the artifact bucket name.
	BucketPrefix string `yaml:"bucket_prefix"`
	// DescriptorFile is the path to the GDK descriptor.
	DescriptorFile string `yaml:"descriptor_file"`
	// SecretsDir holds the files packed into the configuration secret.
	SecretsDir string `yaml:"secrets_dir"`
	// ArtifactsDir is archived into the component artifact.
	ArtifactsDir string `yaml:"artifacts_dir"`
	// RecipesDir holds the JSON recipe template used by ha-publish.
	RecipesDir string `yaml:"recipes_dir"`
	// BuildDir receives the recipe and archive produced by ha-publish.
	BuildDir string `yaml:"build_dir"`
	// GDKRecipeTemplate is the YAML recipe template used by ha-build.
	GDKRecipeTemplate string `yaml:"gdk_recipe_template"`
	// GDKBuildDir receives the recipe and archive produced by ha-build.
	GDKBuildDir string `yaml:"gdk_build_dir"`
	// ComposeFile is the docker-compose descriptor holding the application image.
	ComposeFile string `yaml:"compose_file"`
	// ComposeService is the service key whose image is put into the recipe.
	ComposeService string `yaml:"compose_service"`
	// ArchiveName is the artifact archive base name, without extension.
	ArchiveName string `yaml:"archive_name"`
	// InstallDir is where ha-install materializes the secret files on the device.
	InstallDir string `yaml:"install_dir"`
	// DeploymentTimeout bounds the wait for a deployment to leave the ACTIVE state.
	DeploymentTimeout time.Duration `yaml:"deployment_timeout"`
	// PollInterval separates two deployment status requests.
	PollInterval time.Duration `yaml:"poll_interval"`
	// CallTimeout limits a single AWS request. Zero keeps the SDK defaults.
	CallTimeout time.Duration `yaml:"call_timeout"`
	// Endpoint overrides the AWS endpoint for every service, e.g. for a local emulator.
	Endpoint string `yaml:"endpoint"`
}

const (
	// DefaultConfigFilename is the default settings filename.
	DefaultConfigFilename = "ha-settings.yaml"

	// DefaultEnvFilename is loaded into the process environment when present.
	DefaultEnvFilename = ".env"

	// DefaultSecretName is the logical name of the configuration secret.
	DefaultSecretName = "greengrass-home-assistant"

	// DefaultSecretDescription describes the configuration secret.
	DefaultSecretDescription = "Secure configuration for the Home Assistant component on Greengrass"

	// DefaultComponentName is the component published by ha-publish.
	DefaultComponentName = "aws.greengrass.labs.HomeAssistant"

	// DefaultBucketPrefix is the artifact bucket name prefix.
	DefaultBucketPrefix = "greengrass-home-assistant"

	// DefaultDeploymentTimeout is the ceiling for a deployment to complete.
	DefaultDeploymentTimeout = 900 * time.Second

	// DefaultPollInterval is the delay between deployment status requests.
	DefaultPollInterval = 5 * time.Second

	defaultSecretsDir        = "secrets"
	defaultArtifactsDir      = "artifacts"
	defaultRecipesDir        = "recipes"
	defaultBuildDir          = "build"
	defaultGDKRecipeTemplate = "recipe.yaml"
	defaultGDKBuildDir       = "greengrass-build"
	defaultComposeFilename   = "docker-compose.yml"
	defaultComposeService    = "homeassistant"
	defaultArchiveName       = "home-assistant"
	defaultInstallDir        = "config"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegativeDuration is returned for durations below zero.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns settings with every field set to its default.
func Default() *Config {
	cfg := new(Config)

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads settings from path and validates them.
// A missing file is not an error when path is empty or the default filename:
// the defaults are returned instead. Variables from a .env file in the working
// directory are loaded into the environment first; existing variables win.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(DefaultEnvFilename); err != nil {
		return nil, err
	}

	optional := path == "" || path == DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fills defaults for empty fields and rejects invalid values.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	for name, value := range map[string]time.Duration{
		"deployment_timeout": settings.DeploymentTimeout,
		"poll_interval":      settings.PollInterval,
		"call_timeout":       settings.CallTimeout,
	} {
		if value < 0 {
			return fmt.Errorf("%s %s: %w", name, value, errNegativeDuration)
		}
	}

	if settings.Endpoint != "" {
		if _, err := url.ParseRequestURI(settings.Endpoint); err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
	}

	setDefault(&settings.SecretName, DefaultSecretName)
	setDefault(&settings.SecretDescription, DefaultSecretDescription)
	setDefault(&settings.ComponentName, DefaultComponentName)
	setDefault(&settings.BucketPrefix, DefaultBucketPrefix)
	setDefault(&settings.DescriptorFile, DefaultDescriptorFilename)
	setDefault(&settings.SecretsDir, defaultSecretsDir)
	setDefault(&settings.ArtifactsDir, defaultArtifactsDir)
	setDefault(&settings.RecipesDir, defaultRecipesDir)
	setDefault(&settings.BuildDir, defaultBuildDir)
	setDefault(&settings.GDKRecipeTemplate, defaultGDKRecipeTemplate)
	setDefault(&settings.GDKBuildDir, defaultGDKBuildDir)
	setDefault(&settings.ComposeFile, filepath.Join(settings.ArtifactsDir, defaultComposeFilename))
	setDefault(&settings.ComposeService, defaultComposeService)
	setDefault(&settings.ArchiveName, defaultArchiveName)
	setDefault(&settings.InstallDir, defaultInstallDir)

	if settings.DeploymentTimeout == 0 {
		settings.DeploymentTimeout = DefaultDeploymentTimeout
	}

	if settings.PollInterval == 0 {
		settings.PollInterval = DefaultPollInterval
	}

	return nil
}

// loadEnvFile loads variables from a dotenv file if it exists.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("stat %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
