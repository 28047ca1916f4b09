// Package config manages user-level settings stored at ~/.extmgr/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the catalog path, the settings store backend, and the plugin directories.
package config
