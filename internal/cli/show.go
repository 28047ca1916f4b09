package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show one extension in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  withRegistry(runShow),
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(showCmd)
}

type showEntry struct {
	extension.Resolved
	Target       string   `json:"target,omitempty"`
	DependsOn    []string `json:"depends_on,omitempty"`
	InstalledVer string   `json:"installed_version,omitempty"`
	Outdated     bool     `json:"outdated,omitempty"`
	SettingsKey  string   `json:"settings_key"`
}

func runShow(cmd *cobra.Command, a *app, args []string) error {
	key := args[0]
	all, err := a.registry.All(cmd.Context())
	if err != nil {
		return err
	}
	r, ok := all.Lookup(key)
	if !ok {
		return fmt.Errorf("%w %q", extension.ErrUnknownExtension, key)
	}

	entry := showEntry{
		Resolved:    r,
		Target:      r.Target(),
		DependsOn:   a.registry.DependencyNames(key),
		SettingsKey: a.registry.SettingsKey(),
	}
	if entry.Target != "" {
		if v, err := a.env.Version(entry.Target); err == nil {
			entry.InstalledVer = v.String()
			if outdated, err := a.env.Outdated(entry.Target); err == nil {
				entry.Outdated = outdated
			}
		}
	}

	if showJSON {
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Key:\t%s\n", entry.Key)
	fmt.Fprintf(w, "Name:\t%s\n", entry.Title())
	fmt.Fprintf(w, "Type:\t%s\n", entry.Type)
	if entry.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", entry.Description)
	}
	fmt.Fprintf(w, "Enabled:\t%t\n", entry.Enabled)
	fmt.Fprintf(w, "Status:\t%s\n", entry.Status)
	if entry.Target != "" {
		fmt.Fprintf(w, "Target:\t%s\n", entry.Target)
	}
	if entry.InstalledVer != "" {
		version := entry.InstalledVer
		if entry.Outdated {
			version += " (update available)"
		}
		fmt.Fprintf(w, "Version:\t%s\n", version)
	}
	if len(entry.DependsOn) > 0 {
		deps := strings.Join(entry.DependsOn, ", ")
		if entry.Notice {
			deps += " (not all activated)"
		}
		fmt.Fprintf(w, "Depends on:\t%s\n", deps)
	}
	if a.registry.NeedsUpgrade(key) {
		fmt.Fprintf(w, "Upgrade:\trequired\n")
	}
	fmt.Fprintf(w, "Settings key:\t%s\n", entry.SettingsKey)
	return w.Flush()
}
