// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply when the file is empty.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName            string `yaml:"cli_name"`
	DisplayName        string `yaml:"display_name"`
	Description        string `yaml:"description"`
	HomeDir            string `yaml:"home_dir"`
	EnvPrefix          string `yaml:"env_prefix"`
	GoModule           string `yaml:"go_module"`
	DefaultSettingsKey string `yaml:"default_settings_key"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:            "extmgr",
			DisplayName:        "ExtMgr",
			Description:        "Enablement manager for host extensions, modules, and plugins",
			HomeDir:            ".extmgr",
			EnvPrefix:          "EXTMGR",
			GoModule:           "github.com/extmgr-labs/extmgr",
			DefaultSettingsKey: "extensions",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "extmgr").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".extmgr").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "EXTMGR").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// DefaultSettingsKey returns the settings key used when neither the catalog
// nor the user config names one.
func DefaultSettingsKey() string { load(); return defaults.DefaultSettingsKey }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "EXTMGR_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
