package greengrass

// ComponentVersion is an immutable version of a component in the registry.
type ComponentVersion struct {
	// Name is the component name.
	Name string
	// Version is the semantic version string.
	Version string
	// ARN identifies the version in the registry.
	ARN string
	// Status is the registry's processing state, e.g. DEPLOYABLE.
	Status string
}
