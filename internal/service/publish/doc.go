// Package publish builds a version of the application component and
// registers it in the Greengrass component registry.
//
// The artifact archive is uploaded to a per-account, per-region bucket that
// is created on first use. A version that already exists is never replaced.
package publish
