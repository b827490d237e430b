// Package install runs on the core device before the application starts: it
// fetches the configuration secret and writes its files into the install
// directory.
package install
