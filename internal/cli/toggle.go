package cli

import (
	"fmt"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <key>",
	Short: "Store the on preference for an extension",
	Args:  cobra.ExactArgs(1),
	RunE: withRegistry(func(cmd *cobra.Command, a *app, args []string) error {
		return updatePreference(cmd, a, args[0], string(extension.StatusOn))
	}),
}

var disableCmd = &cobra.Command{
	Use:   "disable <key>",
	Short: "Store the off preference for an extension",
	Args:  cobra.ExactArgs(1),
	RunE: withRegistry(func(cmd *cobra.Command, a *app, args []string) error {
		return updatePreference(cmd, a, args[0], string(extension.StatusOff))
	}),
}

var setCmd = &cobra.Command{
	Use:   "set <key> <status>",
	Short: "Store a preference for an extension",
	Long: `Store a preference for an extension. Exactly "off" stores off; any other
value stores on.`,
	Args: cobra.ExactArgs(2),
	RunE: withRegistry(func(cmd *cobra.Command, a *app, args []string) error {
		return updatePreference(cmd, a, args[0], args[1])
	}),
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(setCmd)
}

func updatePreference(cmd *cobra.Command, a *app, key, status string) error {
	if err := a.registry.Update(cmd.Context(), key, status); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, extension.NormalizePreference(status))
	return nil
}
