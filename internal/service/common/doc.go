// Package common holds helpers shared by several services.
//
// It builds the AWS service clients for one region from the tool settings.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
