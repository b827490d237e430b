// Package component talks to the Greengrass component registry: it checks
// whether a version exists, registers new versions and looks up the newest
// version of AWS-provided components.
package component
