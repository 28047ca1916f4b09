// Package environment provides the plugin host the extension registry
// queries for installation and activation state.
//
// Local keeps installed plugins under one directory, each in a folder named
// by its slug with a plugin.yaml manifest, and records activation in
// active.yaml next to them. Install copies a package from a source
// directory laid out the same way.
package environment
