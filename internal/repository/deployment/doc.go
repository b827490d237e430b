// Package deployment reads and writes Greengrass deployments for a single
// target device and converts them to and from the domain model.
package deployment
