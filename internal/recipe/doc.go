// Package recipe renders component recipes from templates and builds the
// artifact archive referenced by them.
package recipe
