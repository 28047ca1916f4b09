package cli

import (
	"fmt"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func init() {
	for _, action := range extension.Actions {
		rootCmd.AddCommand(newTransitionCmd(action))
	}
}

func newTransitionCmd(action extension.Action) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " <key>",
		Short: fmt.Sprintf("%s the plugin behind an extension", capitalize(string(action))),
		Long: fmt.Sprintf(`%s the plugin an extension points at: the first dependency of a
module, or the slug of any other type. Nothing happens when the plugin is
already in the requested state. Stored preferences are not changed.`, capitalize(string(action))),
		Args: cobra.ExactArgs(1),
		RunE: withRegistry(func(cmd *cobra.Command, a *app, args []string) error {
			key := args[0]
			if err := a.registry.Transition(cmd.Context(), key, action); err != nil {
				return err
			}
			d, _ := a.registry.Find(key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", key, pastTense(action), d.Target())
			return nil
		}),
	}
}

func pastTense(a extension.Action) string {
	switch a {
	case extension.ActionInstall, extension.ActionUninstall:
		return string(a) + "ed"
	default:
		return string(a) + "d"
	}
}

func capitalize(s string) string {
	return cases.Title(language.English).String(s)
}
