package manifest

// PluginManifest is the plugin.yaml found at the root of an installable
// plugin package.
type PluginManifest struct {
	Name        string   `yaml:"name" json:"name"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Homepage    string   `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Requires    []string `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// PluginManifestFile is the manifest filename inside a plugin directory.
const PluginManifestFile = "plugin.yaml"
