package cli

import (
	"fmt"
	"path/filepath"

	"github.com/extmgr-labs/extmgr/internal/manifest"
	"github.com/spf13/cobra"
)

var validateKind string

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a catalog or plugin manifest against its schema",
	Long: `Validate a file against the embedded JSON schema. Without an argument the
configured catalog is checked. Files named plugin.yaml are checked as plugin
manifests unless --kind says otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateKind, "kind", "", "Schema to use: catalog or plugin (default: from file name)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := settingsLoaded.CatalogPath
	if len(args) == 1 {
		path = args[0]
	}

	kind, err := kindFor(path, validateKind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s (%s)\n", path, kind)

	result, err := manifest.ValidateFile(path, kind)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return fmt.Errorf("validation failed: %w", err)
	}
	if result.Valid {
		fmt.Fprintln(out, "  [ OK ] valid")
		return nil
	}

	fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Fprintf(out, "    - %s\n", issue)
	}
	return fmt.Errorf("%s has %d validation issue(s)", path, len(result.Issues))
}

func kindFor(path, explicit string) (manifest.Kind, error) {
	switch manifest.Kind(explicit) {
	case manifest.KindCatalog, manifest.KindPlugin:
		return manifest.Kind(explicit), nil
	case "":
	default:
		return "", fmt.Errorf("unknown kind %q (expected catalog or plugin)", explicit)
	}
	if filepath.Base(path) == manifest.PluginManifestFile {
		return manifest.KindPlugin, nil
	}
	return manifest.KindCatalog, nil
}
