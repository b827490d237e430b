// Package build is the custom build step run by the Greengrass Development Kit.
//
// It fills the YAML recipe template with the component name and version from
// the GDK descriptor, the configuration secret ARN and the application image,
// then archives the artifacts directory where GDK expects it.
package build
