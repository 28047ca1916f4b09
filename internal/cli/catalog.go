package cli

import (
	"fmt"

	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/spf13/cobra"
)

var (
	catalogAddType        string
	catalogAddName        string
	catalogAddSlug        string
	catalogAddDeps        []string
	catalogAddStatus      string
	catalogAddUpgrade     bool
	catalogAddDescription string
)

func init() {
	catalogAddCmd.Flags().StringVar(&catalogAddType, "type", string(extension.TypePlugin), "Extension type (module, addon, plugin, host-plugin)")
	catalogAddCmd.Flags().StringVar(&catalogAddName, "name", "", "Display name")
	catalogAddCmd.Flags().StringVar(&catalogAddSlug, "slug", "", "Plugin slug")
	catalogAddCmd.Flags().StringSliceVar(&catalogAddDeps, "deps", nil, "Dependency slugs, first one drives module status")
	catalogAddCmd.Flags().StringVar(&catalogAddStatus, "status", string(extension.StatusOff), "Base status when no preference is stored")
	catalogAddCmd.Flags().BoolVar(&catalogAddUpgrade, "upgrade", false, "Mark the extension as needing an upgrade")
	catalogAddCmd.Flags().StringVar(&catalogAddDescription, "description", "", "Short description")

	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Edit the extension catalog",
	Long: `Add or remove descriptors in the catalog file. Stored preferences are
left alone; a removed key's preference is simply ignored.`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <key>",
	Short: "Add a descriptor to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsLoaded.CatalogPath
		cat, err := extension.LoadCatalog(path)
		if err != nil {
			return err
		}
		if !knownType(catalogAddType) {
			return fmt.Errorf("unknown type %q (expected one of %v)", catalogAddType, extension.Types)
		}

		d := extension.Descriptor{
			Key:          args[0],
			Name:         catalogAddName,
			Type:         extension.Type(catalogAddType),
			Slug:         catalogAddSlug,
			Deps:         catalogAddDeps,
			NeedsUpgrade: catalogAddUpgrade,
			BaseStatus:   extension.NormalizePreference(catalogAddStatus),
			Description:  catalogAddDescription,
		}
		if err := cat.AddDescriptor(d); err != nil {
			return err
		}
		if err := extension.SaveCatalog(path, cat); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) to %s\n", d.Key, d.Type, path)
		return nil
	},
}

var catalogRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a descriptor from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := settingsLoaded.CatalogPath
		cat, err := extension.LoadCatalog(path)
		if err != nil {
			return err
		}
		if err := cat.RemoveDescriptor(args[0]); err != nil {
			return err
		}
		if err := extension.SaveCatalog(path, cat); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[0], path)
		return nil
	},
}
