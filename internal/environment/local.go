package environment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/extmgr-labs/extmgr/internal/manifest"
	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"
)

// ActiveFile records activated slugs inside the plugin directory.
const ActiveFile = "active.yaml"

var (
	// ErrNotInstalled is returned when an operation needs an installed plugin.
	ErrNotInstalled = errors.New("plugin is not installed")
	// ErrNotAvailable is returned when the source directory has no package for a slug.
	ErrNotAvailable = errors.New("plugin package not available")
	// ErrInvalidSlug is returned for slugs that are not a single path segment.
	ErrInvalidSlug = errors.New("invalid plugin slug")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

type activeList struct {
	Active []string `yaml:"active"`
}

// Local is a filesystem plugin host.
type Local struct {
	root   string
	source string
	logger zerolog.Logger
	mu     sync.Mutex
}

// LocalOption configures a Local environment.
type LocalOption func(*Local)

// WithLogger sets the environment logger.
func WithLogger(l zerolog.Logger) LocalOption {
	return func(e *Local) { e.logger = l }
}

// NewLocal returns a host with installed plugins under root and installable
// packages under source.
func NewLocal(root, source string, opts ...LocalOption) *Local {
	e := &Local{root: root, source: source, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the installed plugin directory.
func (e *Local) Root() string { return e.root }

func validSlug(slug string) bool {
	return slugPattern.MatchString(slug) && !strings.Contains(slug, "..")
}

func (e *Local) manifestPath(dir, slug string) string {
	return filepath.Join(dir, slug, manifest.PluginManifestFile)
}

// IsInstalled reports whether slug has a manifest in the plugin directory.
func (e *Local) IsInstalled(slug string) bool {
	if !validSlug(slug) {
		return false
	}
	info, err := os.Stat(e.manifestPath(e.root, slug))
	return err == nil && info.Mode().IsRegular()
}

// IsActivated reports whether slug is installed and listed as active.
func (e *Local) IsActivated(slug string) bool {
	if !e.IsInstalled(slug) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.loadActive()
	if err != nil {
		e.logger.Warn().Err(err).Msg("reading activation list")
		return false
	}
	return contains(active, slug)
}

// Install copies the package for slug from the source directory. The
// package manifest must pass schema validation.
func (e *Local) Install(ctx context.Context, slug string) error {
	if !validSlug(slug) {
		return fmt.Errorf("%w %q", ErrInvalidSlug, slug)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src := filepath.Join(e.source, slug)
	srcManifest := e.manifestPath(e.source, slug)
	if _, err := os.Stat(srcManifest); err != nil {
		return fmt.Errorf("%w: %s", ErrNotAvailable, slug)
	}

	result, err := manifest.ValidateFile(srcManifest, manifest.KindPlugin)
	if err != nil {
		return fmt.Errorf("validating %s: %w", srcManifest, err)
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Issues))
		for _, issue := range result.Issues {
			msgs = append(msgs, issue.String())
		}
		return fmt.Errorf("invalid manifest for %s: %s", slug, strings.Join(msgs, "; "))
	}

	dst := filepath.Join(e.root, slug)
	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing existing installation at %s: %w", dst, err)
		}
	}
	if err := copyPackage(ctx, src, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	e.logger.Info().Str("slug", slug).Str("path", dst).Msg("plugin installed")
	return nil
}

// Activate marks slug active. The plugin must be installed.
func (e *Local) Activate(ctx context.Context, slug string) error {
	if !e.IsInstalled(slug) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.loadActive()
	if err != nil {
		return err
	}
	if contains(active, slug) {
		return nil
	}
	if err := e.saveActive(append(active, slug)); err != nil {
		return err
	}

	e.logger.Info().Str("slug", slug).Msg("plugin activated")
	return nil
}

// Deactivate removes slug from the activation list. Inactive slugs are a no-op.
func (e *Local) Deactivate(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.loadActive()
	if err != nil {
		return err
	}
	if !contains(active, slug) {
		return nil
	}

	kept := make([]string, 0, len(active))
	for _, s := range active {
		if s != slug {
			kept = append(kept, s)
		}
	}
	if err := e.saveActive(kept); err != nil {
		return err
	}

	e.logger.Info().Str("slug", slug).Msg("plugin deactivated")
	return nil
}

// Uninstall deactivates slug and removes its directory.
func (e *Local) Uninstall(ctx context.Context, slug string) error {
	if !e.IsInstalled(slug) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	if err := e.Deactivate(ctx, slug); err != nil {
		return err
	}

	dir := filepath.Join(e.root, slug)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}

	e.logger.Info().Str("slug", slug).Msg("plugin uninstalled")
	return nil
}

// DisplayName returns the manifest name of an installed or available
// plugin, falling back to the slug.
func (e *Local) DisplayName(slug string) string {
	if !validSlug(slug) {
		return slug
	}
	for _, dir := range []string{e.root, e.source} {
		m, err := manifest.ParsePlugin(e.manifestPath(dir, slug))
		if err == nil && m.Name != "" {
			return m.Name
		}
	}
	return slug
}

// Version returns the installed version of slug.
func (e *Local) Version(slug string) (*semver.Version, error) {
	if !e.IsInstalled(slug) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	m, err := manifest.ParsePlugin(e.manifestPath(e.root, slug))
	if err != nil {
		return nil, err
	}
	v, err := parseVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", slug, err)
	}
	return v, nil
}

// Outdated reports whether the source package for slug is newer than the
// installed copy.
func (e *Local) Outdated(slug string) (bool, error) {
	if !e.IsInstalled(slug) {
		return false, fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	installed, err := manifest.ParsePlugin(e.manifestPath(e.root, slug))
	if err != nil {
		return false, err
	}
	available, err := manifest.ParsePlugin(e.manifestPath(e.source, slug))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrNotAvailable, slug)
	}

	return IsNewer(available.Version, installed.Version)
}

// MissingRequirements returns the slugs an installed plugin's manifest
// requires that are not activated, in manifest order.
func (e *Local) MissingRequirements(slug string) ([]string, error) {
	if !e.IsInstalled(slug) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, slug)
	}
	m, err := manifest.ParsePlugin(e.manifestPath(e.root, slug))
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, req := range m.Requires {
		if !e.IsActivated(req) {
			missing = append(missing, req)
		}
	}
	return missing, nil
}

// Installed lists installed slugs in lexical order.
func (e *Local) Installed() ([]string, error) {
	entries, err := os.ReadDir(e.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading plugin directory %s: %w", e.root, err)
	}

	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() && e.IsInstalled(entry.Name()) {
			slugs = append(slugs, entry.Name())
		}
	}
	return slugs, nil
}

func (e *Local) loadActive() ([]string, error) {
	path := filepath.Join(e.root, ActiveFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var list activeList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return list.Active, nil
}

func (e *Local) saveActive(active []string) error {
	sort.Strings(active)
	data, err := yaml.Marshal(activeList{Active: active})
	if err != nil {
		return fmt.Errorf("marshaling activation list: %w", err)
	}

	if err := os.MkdirAll(e.root, 0o755); err != nil {
		return fmt.Errorf("creating plugin directory %s: %w", e.root, err)
	}
	path := filepath.Join(e.root, ActiveFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
