package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/spf13/cobra"
)

var (
	listTypeFilter string
	listEnabled    bool
	listJSON       bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List extensions with their resolved status",
	Long: `List every extension in the catalog in catalog order, with the stored
preference and the display status derived from the plugin directory.`,
	Args: cobra.NoArgs,
	RunE: withRegistry(runList),
}

func init() {
	listCmd.Flags().StringVar(&listTypeFilter, "type", "", "Filter by type (module, addon, plugin, host-plugin)")
	listCmd.Flags().BoolVar(&listEnabled, "enabled", false, "Only show extensions whose status is on")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a resolved extension for display.
type listEntry struct {
	extension.Resolved
	DependsOn string `json:"depends_on,omitempty"`
}

func runList(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()

	var (
		set extension.Set
		err error
	)
	switch {
	case listTypeFilter != "":
		if !knownType(listTypeFilter) {
			return fmt.Errorf("unknown type %q (expected one of %v)", listTypeFilter, extension.Types)
		}
		set, err = a.registry.ByType(ctx, extension.Type(listTypeFilter))
		if err == nil && listEnabled {
			var enabled extension.Set
			if enabled, err = a.registry.Enabled(ctx); err == nil {
				set = set.Filter(func(r extension.Resolved) bool {
					_, ok := enabled.Lookup(r.Key)
					return ok
				})
			}
		}
	case listEnabled:
		set, err = a.registry.Enabled(ctx)
	default:
		set, err = a.registry.All(ctx)
	}
	if err != nil {
		return err
	}

	if len(set) == 0 && !listJSON {
		fmt.Fprintln(cmd.OutOrStdout(), "No extensions found.")
		return nil
	}

	entries := make([]listEntry, 0, len(set))
	for _, r := range set {
		entries = append(entries, listEntry{Resolved: r, DependsOn: a.registry.DependencyString(r.Key)})
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func knownType(t string) bool {
	for _, known := range extension.Types {
		if string(known) == t {
			return true
		}
	}
	return false
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tNAME\tENABLED\tSTATUS\tDEPENDS ON")
	for _, e := range entries {
		deps := e.DependsOn
		if deps == "" {
			deps = "-"
		} else if e.Notice {
			deps += " (missing)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n", e.Key, e.Type, e.Title(), e.Enabled, e.Status, deps)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
