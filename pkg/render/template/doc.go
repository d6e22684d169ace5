// Package template defines the engine contract page renderers depend on.
// The gotemplate subpackage provides the pongo2-backed implementation.
package template
