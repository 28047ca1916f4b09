// Package extension resolves and mutates the enablement state of host
// extensions (modules, addons, plugins, host plugins).
//
// A Registry combines three inputs: the descriptor list supplied at boot,
// the on/off preferences stored under one settings key, and live facts from
// the plugin environment. Resolution is recomputed on every read. Modules
// with dependencies, plugins, addons, and host plugins take their display
// status from the environment; every other type shows its stored preference.
//
// Persisting a preference (Update) and driving an install, activate, or
// deactivate (Transition) are separate operations.
package extension
