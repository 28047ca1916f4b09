package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"
)

// File stores every settings key in one YAML document:
//
//	extensions:
//	  seo: "on"
//	  mailer: "off"
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a store backed by the YAML file at path. The file is
// created on first write.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("settings file path is empty")
	}
	return &File{path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Read returns the map stored under key, or an empty map.
func (f *File) Read(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return clone(doc[key]), nil
}

// Write replaces the map stored under key and rewrites the file atomically.
func (f *File) Write(_ context.Context, key string, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	doc[key] = clone(values)

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp settings file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing settings file %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error { return nil }

func (f *File) load() (map[string]map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", f.path, err)
	}

	doc := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", f.path, err)
	}
	if doc == nil {
		doc = make(map[string]map[string]string)
	}
	return doc, nil
}
