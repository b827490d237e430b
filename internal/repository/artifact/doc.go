// Package artifact manages the per-account bucket holding component artifacts.
package artifact
