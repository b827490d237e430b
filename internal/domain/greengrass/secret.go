package greengrass

// Secret is the configuration secret as stored in the secret store.
type Secret struct {
	// Name is the logical secret name.
	Name string
	// ARN is assigned by the store on creation.
	ARN string
	// Value is the secret string, a JSON object of file paths to contents.
	Value string
	// VersionID identifies the stored revision.
	VersionID string
}
