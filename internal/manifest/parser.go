package manifest

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ParsePlugin reads a plugin manifest.
func ParsePlugin(path string) (*PluginManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var m PluginManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	return &m, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
