// Package bundle packs a directory of configuration files into a single JSON
// object string and writes such a bundle back to disk.
//
// A bundle maps slash-separated relative paths to file contents. Only
// double quotes, line feeds and carriage returns are escaped when packing, so
// files containing backslashes or other control characters do not round-trip.
package bundle
