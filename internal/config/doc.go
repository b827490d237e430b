// Package config loads the settings shared by the tools and the GDK
// component descriptor.
//
// Settings live in an optional YAML file; every field has a default matching
// the repository layout the tools were written for. The descriptor
// (gdk-config.json) names the component, its version and publish region.
package config
