package extension

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Registry holds the descriptor list for one settings key and resolves each
// descriptor against the settings store and the plugin environment.
//
// A Registry is request-scoped: it performs no locking, and concurrent
// Updates against the same settings key can lose a write.
type Registry struct {
	settingsKey string
	descriptors []Descriptor
	index       map[string]int

	store    SettingsStore
	env      Environment
	filter   Filter
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithFilter installs the boot-time descriptor hook.
func WithFilter(f Filter) Option {
	return func(r *Registry) { r.filter = f }
}

// WithNotifier sends successful changes to n.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// WithLogger sets the registry logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New creates a registry and boots it with the given key and descriptors.
func New(settingsKey string, descriptors []Descriptor, store SettingsStore, env Environment, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		env:    env,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Boot(settingsKey, descriptors)
	return r
}

// Boot replaces the settings key and the descriptor list. The filter, if
// any, runs first. A key that appears twice keeps its first position and
// takes the later descriptor. Descriptor shape is not validated.
func (r *Registry) Boot(settingsKey string, descriptors []Descriptor) {
	list := make([]Descriptor, len(descriptors))
	copy(list, descriptors)
	if r.filter != nil {
		list = r.filter(list)
	}

	r.settingsKey = settingsKey
	r.descriptors = make([]Descriptor, 0, len(list))
	r.index = make(map[string]int, len(list))
	for _, d := range list {
		if i, ok := r.index[d.Key]; ok {
			r.descriptors[i] = d
			continue
		}
		r.index[d.Key] = len(r.descriptors)
		r.descriptors = append(r.descriptors, d)
	}

	r.logger.Debug().
		Str("settings_key", settingsKey).
		Int("extensions", len(r.descriptors)).
		Msg("registry booted")
}

// SettingsKey returns the key preferences are stored under.
func (r *Registry) SettingsKey() string {
	return r.settingsKey
}

// Descriptors returns the descriptor list as booted.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Find looks a descriptor up by key without resolving it.
func (r *Registry) Find(key string) (Descriptor, bool) {
	i, ok := r.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return r.descriptors[i], true
}

// Settings returns the stored preference mapping.
func (r *Registry) Settings(ctx context.Context) (map[string]string, error) {
	settings, err := r.store.Read(ctx, r.settingsKey)
	if err != nil {
		return nil, fmt.Errorf("reading settings %q: %w", r.settingsKey, err)
	}
	if settings == nil {
		settings = make(map[string]string)
	}
	return settings, nil
}

// All resolves every descriptor in boot order. Results are computed fresh on
// every call.
func (r *Registry) All(ctx context.Context) (Set, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make(Set, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		resolved = append(resolved, r.resolve(d, settings))
	}
	return resolved, nil
}

func (r *Registry) resolve(d Descriptor, settings map[string]string) Resolved {
	pref, ok := settings[d.Key]
	if !ok {
		pref = string(d.BaseStatus)
	}

	enabled := Status(pref) == StatusOn
	status := StatusOff
	if enabled {
		status = StatusOn
	}

	switch {
	case d.Type == TypeModule && len(d.Deps) > 0:
		status = r.threeWay(d.Deps[0])
	case d.Type == TypePlugin || d.Type == TypeAddon:
		status = r.threeWay(d.Slug)
	case d.Type == TypeHostPlugin:
		if r.env.IsActivated(d.Slug) {
			status = StatusActivate
		} else {
			status = StatusInstall
		}
	}

	return Resolved{
		Descriptor: d,
		Enabled:    enabled,
		Status:     status,
		Notice:     !r.dependenciesResolved(d),
	}
}

// threeWay maps live facts about slug to upgrade, install, or activate.
func (r *Registry) threeWay(slug string) Status {
	switch {
	case !r.env.IsInstalled(slug):
		return StatusUpgrade
	case !r.env.IsActivated(slug):
		return StatusInstall
	default:
		return StatusActivate
	}
}

// Enabled returns the resolved extensions whose status is on.
func (r *Registry) Enabled(ctx context.Context) (Set, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return all.Filter(func(e Resolved) bool { return e.Status == StatusOn }), nil
}

// ByType returns the resolved extensions of type t.
func (r *Registry) ByType(ctx context.Context, t Type) (Set, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return all.Filter(func(e Resolved) bool { return e.Type == t }), nil
}

// Plugins returns the resolved plugin extensions.
func (r *Registry) Plugins(ctx context.Context) (Set, error) { return r.ByType(ctx, TypePlugin) }

// Addons returns the resolved addon extensions.
func (r *Registry) Addons(ctx context.Context) (Set, error) { return r.ByType(ctx, TypeAddon) }

// Modules returns the resolved module extensions.
func (r *Registry) Modules(ctx context.Context) (Set, error) { return r.ByType(ctx, TypeModule) }

// HostPlugins returns the resolved host-plugin extensions.
func (r *Registry) HostPlugins(ctx context.Context) (Set, error) {
	return r.ByType(ctx, TypeHostPlugin)
}

// Update persists the on/off preference for key. Exactly "off" stores off;
// every other value stores on. The preference is merged into the existing
// mapping and the whole mapping is written back.
func (r *Registry) Update(ctx context.Context, key, status string) error {
	if _, ok := r.Find(key); !ok {
		return fmt.Errorf("%w %q", ErrUnknownExtension, key)
	}

	settings, err := r.Settings(ctx)
	if err != nil {
		return err
	}

	pref := NormalizePreference(status)
	settings[key] = string(pref)

	if err := r.store.Write(ctx, r.settingsKey, settings); err != nil {
		return fmt.Errorf("writing settings %q: %w", r.settingsKey, err)
	}

	r.logger.Info().
		Str("settings_key", r.settingsKey).
		Str("extension", key).
		Str("preference", string(pref)).
		Msg("extension preference updated")

	r.notify(ctx, Change{
		Kind:        ChangeToggled,
		SettingsKey: r.settingsKey,
		Key:         key,
		Enabled:     pref == StatusOn,
	})
	return nil
}

// Transition drives an environment action for key's target (the first
// dependency of a module, the slug of anything else). Actions that are
// already satisfied are no-ops. Preferences are not touched.
func (r *Registry) Transition(ctx context.Context, key string, action Action) error {
	d, ok := r.Find(key)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownExtension, key)
	}

	target := d.Target()
	if target == "" {
		return fmt.Errorf("%w: %q", ErrNoTarget, key)
	}

	action, err := ParseAction(string(action))
	if err != nil {
		return err
	}

	acted := false
	switch action {
	case ActionInstall:
		if !r.env.IsInstalled(target) {
			acted = true
			err = r.env.Install(ctx, target)
		}
	case ActionActivate:
		if !r.env.IsActivated(target) {
			acted = true
			err = r.env.Activate(ctx, target)
		}
	case ActionDeactivate:
		if r.env.IsActivated(target) {
			acted = true
			err = r.env.Deactivate(ctx, target)
		}
	case ActionUninstall:
		if r.env.IsInstalled(target) {
			acted = true
			err = r.env.Uninstall(ctx, target)
		}
	}
	if err != nil {
		return fmt.Errorf("%s %s for %q: %w", action, target, key, err)
	}

	if !acted {
		r.logger.Debug().
			Str("extension", key).
			Str("target", target).
			Str("action", string(action)).
			Msg("transition already satisfied")
		return nil
	}

	r.logger.Info().
		Str("extension", key).
		Str("target", target).
		Str("action", string(action)).
		Msg("extension transitioned")

	r.notify(ctx, Change{
		Kind:        ChangeTransitioned,
		SettingsKey: r.settingsKey,
		Key:         key,
		Action:      action,
		Target:      target,
	})
	return nil
}

func (r *Registry) notify(ctx context.Context, change Change) {
	if r.notifier == nil {
		return
	}
	change.At = r.now()
	if err := r.notifier.Notify(ctx, change); err != nil {
		r.logger.Warn().Err(err).
			Str("extension", change.Key).
			Str("kind", string(change.Kind)).
			Msg("change notification failed")
	}
}

// NeedsUpgrade reports the descriptor's upgrade flag. Unknown keys report false.
func (r *Registry) NeedsUpgrade(key string) bool {
	d, ok := r.Find(key)
	return ok && d.NeedsUpgrade
}

// Dependencies returns the declared dependency slugs of key, or nil.
func (r *Registry) Dependencies(key string) []string {
	d, ok := r.Find(key)
	if !ok || len(d.Deps) == 0 {
		return nil
	}
	deps := make([]string, len(d.Deps))
	copy(deps, d.Deps)
	return deps
}

// DependenciesResolved reports whether every dependency of key is activated.
// Unknown keys and keys without dependencies are resolved.
func (r *Registry) DependenciesResolved(key string) bool {
	d, ok := r.Find(key)
	if !ok {
		return true
	}
	return r.dependenciesResolved(d)
}

func (r *Registry) dependenciesResolved(d Descriptor) bool {
	for _, dep := range d.Deps {
		if !r.env.IsActivated(dep) {
			return false
		}
	}
	return true
}

// DependencyNames returns the display names of key's dependencies.
func (r *Registry) DependencyNames(key string) []string {
	deps := r.Dependencies(key)
	names := make([]string, 0, len(deps))
	for _, dep := range deps {
		names = append(names, r.env.DisplayName(dep))
	}
	return names
}

// DependencyString joins DependencyNames with commas.
func (r *Registry) DependencyString(key string) string {
	return strings.Join(r.DependencyNames(key), ",")
}
