// Package secret stores the configuration secret in AWS Secrets Manager and
// fetches secrets by id for the on-device installer.
package secret
