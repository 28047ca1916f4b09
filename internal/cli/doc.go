// Package cli defines the Cobra command tree for the extmgr CLI. Each file
// registers one top-level command with the root command. Commands that work
// on extensions build a registry through withRegistry and only handle flag
// parsing and output formatting themselves.
package cli
