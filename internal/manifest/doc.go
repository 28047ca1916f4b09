// Package manifest parses plugin manifests and validates extension catalogs
// and plugin manifests against the JSON schemas embedded from schema/.
package manifest
