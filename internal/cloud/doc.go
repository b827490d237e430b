// Package cloud resolves AWS configuration for the tools and builds the
// resource names (ARNs, bucket names) shared by the workflows.
package cloud
