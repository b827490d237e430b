package version

import "fmt"

// appName prefixes the application id reported to AWS with every request.
const appName = "greengrass-home-assistant"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}

// AppID returns the identifier attached to the SDK user agent, e.g. "greengrass-home-assistant/0.1.0".
func AppID() string {
	return appName + "/" + Version
}
