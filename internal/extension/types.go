package extension

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Type classifies a descriptor and selects its resolution rule.
type Type string

const (
	TypeModule     Type = "module"
	TypeAddon      Type = "addon"
	TypePlugin     Type = "plugin"
	TypeHostPlugin Type = "host-plugin"
)

// Types lists the known descriptor types in display order.
var Types = []Type{TypeModule, TypeAddon, TypePlugin, TypeHostPlugin}

// Status is the display status of a resolved extension.
type Status string

const (
	StatusOn       Status = "on"
	StatusOff      Status = "off"
	StatusUpgrade  Status = "upgrade"
	StatusInstall  Status = "install"
	StatusActivate Status = "activate"
)

// Action is an environment transition requested through Registry.Transition.
type Action string

const (
	ActionInstall    Action = "install"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionUninstall  Action = "uninstall"
)

// Actions lists the transitions in the order the CLI registers them.
var Actions = []Action{ActionInstall, ActionActivate, ActionDeactivate, ActionUninstall}

var (
	// ErrUnknownExtension is returned when a key is not in the descriptor list.
	ErrUnknownExtension = errors.New("unknown extension")
	// ErrNoTarget is returned when a transition has no slug or dependency to act on.
	ErrNoTarget = errors.New("extension has no plugin target")
	// ErrUnknownAction is returned for names not listed in Actions.
	ErrUnknownAction = errors.New("unknown action")
)

// Descriptor is an extension entry supplied at boot. It is never mutated.
type Descriptor struct {
	Key          string   `yaml:"key" json:"key"`
	Name         string   `yaml:"name,omitempty" json:"name,omitempty"`
	Type         Type     `yaml:"type" json:"type"`
	Slug         string   `yaml:"slug,omitempty" json:"slug,omitempty"`
	Deps         []string `yaml:"deps,omitempty" json:"deps,omitempty"`
	NeedsUpgrade bool     `yaml:"upgrade,omitempty" json:"upgrade,omitempty"`
	BaseStatus   Status   `yaml:"status,omitempty" json:"status,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// Title returns the display name, falling back to the key.
func (d Descriptor) Title() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Key
}

// Target returns the slug the environment is queried with: the first
// dependency for modules, the slug for every other type. Modules without
// dependencies have no target.
func (d Descriptor) Target() string {
	if d.Type == TypeModule {
		if len(d.Deps) == 0 {
			return ""
		}
		return d.Deps[0]
	}
	return d.Slug
}

// Resolved is a descriptor combined with its stored preference and the
// status derived from the live environment.
type Resolved struct {
	Descriptor `yaml:",inline"`

	// Enabled is the persisted on/off preference.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Status is the display status.
	Status Status `yaml:"display_status" json:"display_status"`
	// Notice is set when a declared dependency is not activated.
	Notice bool `yaml:"notice,omitempty" json:"notice,omitempty"`
}

// SettingsStore persists preference mappings under a settings key.
// Read returns an empty map, not an error, when nothing is stored yet.
type SettingsStore interface {
	Read(ctx context.Context, key string) (map[string]string, error)
	Write(ctx context.Context, key string, values map[string]string) error
}

// Environment answers live plugin questions and performs plugin lifecycle
// operations by slug.
type Environment interface {
	IsInstalled(slug string) bool
	IsActivated(slug string) bool
	Install(ctx context.Context, slug string) error
	Activate(ctx context.Context, slug string) error
	Deactivate(ctx context.Context, slug string) error
	Uninstall(ctx context.Context, slug string) error
	DisplayName(slug string) string
}

// Filter rewrites the descriptor list at boot. It is the hook third parties
// use to add, remove, or alter descriptors.
type Filter func([]Descriptor) []Descriptor

// ChangeKind distinguishes preference writes from environment transitions.
type ChangeKind string

const (
	ChangeToggled      ChangeKind = "toggled"
	ChangeTransitioned ChangeKind = "transitioned"
)

// Change describes a successful Update or Transition.
type Change struct {
	Kind        ChangeKind
	SettingsKey string
	Key         string
	Enabled     bool
	Action      Action
	Target      string
	At          time.Time
}

// Notifier receives changes after they succeed.
type Notifier interface {
	Notify(ctx context.Context, change Change) error
}

// Set is an ordered mapping of extension key to resolved extension.
type Set []Resolved

// Lookup returns the entry for key.
func (s Set) Lookup(key string) (Resolved, bool) {
	for _, r := range s {
		if r.Key == key {
			return r, true
		}
	}
	return Resolved{}, false
}

// Keys returns the keys in order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, r := range s {
		keys = append(keys, r.Key)
	}
	return keys
}

// Filter returns the entries for which keep returns true, preserving order.
func (s Set) Filter(keep func(Resolved) bool) Set {
	out := make(Set, 0, len(s))
	for _, r := range s {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// NormalizePreference maps a requested status to the stored preference:
// exactly "off" is off, anything else is on.
func NormalizePreference(status string) Status {
	if status == string(StatusOff) {
		return StatusOff
	}
	return StatusOn
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, s)
}
