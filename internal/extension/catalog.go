package extension

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// CatalogFile is the default filename of the descriptor catalog.
const CatalogFile = "extensions.yaml"

// Catalog is the on-disk form of a descriptor list.
type Catalog struct {
	SettingsKey string       `yaml:"settings_key,omitempty"`
	Extensions  []Descriptor `yaml:"extensions"`
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	return &cat, nil
}

// SaveCatalog writes the catalog back to path.
func SaveCatalog(path string, cat *Catalog) error {
	data, err := yaml.Marshal(cat)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}

	return nil
}

// FindDescriptor returns the descriptor with the given key, or nil if not found.
func (c *Catalog) FindDescriptor(key string) *Descriptor {
	for i := range c.Extensions {
		if c.Extensions[i].Key == key {
			return &c.Extensions[i]
		}
	}
	return nil
}

// AddDescriptor appends d unless its key is already present.
func (c *Catalog) AddDescriptor(d Descriptor) error {
	if c.FindDescriptor(d.Key) != nil {
		return fmt.Errorf("extension %q already exists", d.Key)
	}
	c.Extensions = append(c.Extensions, d)
	return nil
}

// RemoveDescriptor removes the descriptor with the given key.
func (c *Catalog) RemoveDescriptor(key string) error {
	for i, d := range c.Extensions {
		if d.Key == key {
			c.Extensions = append(c.Extensions[:i], c.Extensions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownExtension, key)
}
