// Package greengrass holds the descriptors the tools read from and send to
// the cloud: secrets, component versions and device deployments.
package greengrass
