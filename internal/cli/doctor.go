package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/extmgr-labs/extmgr/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the catalog, settings store, and plugin directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := runCatalogCheck(out, settingsLoaded.CatalogPath)
		runPluginDirCheck(out, settingsLoaded.PluginsDir, settingsLoaded.PluginsSource)
		if failed {
			return fmt.Errorf("catalog check failed")
		}
		return withRegistry(runStoreCheck)(cmd, args)
	},
}

func runCatalogCheck(out io.Writer, path string) bool {
	fmt.Fprintf(out, "Catalog check: %s\n", path)

	result, err := manifest.ValidateFile(path, manifest.KindCatalog)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return true
	}
	if !result.Valid {
		fmt.Fprintf(out, "  [WARN] %d schema issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "    - %s\n", issue)
		}
		return false
	}
	fmt.Fprintln(out, "  [ OK ] catalog is valid")
	return false
}

func runPluginDirCheck(out io.Writer, root, source string) {
	fmt.Fprintln(out, "Plugin directory check:")
	for _, dir := range []struct{ label, path string }{
		{"plugins", root},
		{"packages", source},
	} {
		if info, err := os.Stat(dir.path); err != nil || !info.IsDir() {
			fmt.Fprintf(out, "  [MISS] %s directory %s\n", dir.label, dir.path)
			continue
		}
		fmt.Fprintf(out, "  [ OK ] %s directory %s\n", dir.label, dir.path)
	}
}

func runStoreCheck(cmd *cobra.Command, a *app, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Settings check: %s driver, key %q\n", a.cfg.SettingsDriver, a.registry.SettingsKey())

	prefs, err := a.registry.Settings(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return err
	}
	fmt.Fprintf(out, "  [ OK ] %d stored preference(s)\n", len(prefs))
	keys := make([]string, 0, len(prefs))
	for key := range prefs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := a.registry.Find(key); !ok {
			fmt.Fprintf(out, "  [INFO] %s is stored but not in the catalog\n", key)
		}
	}

	fmt.Fprintln(out, "Dependency check:")
	missing := 0
	for _, d := range a.registry.Descriptors() {
		if len(d.Deps) == 0 {
			continue
		}
		if a.registry.DependenciesResolved(d.Key) {
			fmt.Fprintf(out, "  [ OK ] %s: %s\n", d.Key, a.registry.DependencyString(d.Key))
			continue
		}
		missing++
		fmt.Fprintf(out, "  [WARN] %s: needs %s activated\n", d.Key, a.registry.DependencyString(d.Key))
	}
	if missing == 0 {
		fmt.Fprintln(out, "  [ OK ] all dependencies activated")
	}

	installed, err := a.env.Installed()
	if err != nil {
		fmt.Fprintf(out, "  [WARN] %v\n", err)
		return nil
	}
	fmt.Fprintln(out, "Installed plugin check:")
	if len(installed) == 0 {
		fmt.Fprintln(out, "  [INFO] no plugins installed")
	}
	for _, slug := range installed {
		missingReqs, err := a.env.MissingRequirements(slug)
		switch {
		case err != nil:
			fmt.Fprintf(out, "  [WARN] %s: %v\n", slug, err)
		case len(missingReqs) > 0:
			fmt.Fprintf(out, "  [WARN] %s: requires %s activated\n", slug, strings.Join(missingReqs, ", "))
		default:
			fmt.Fprintf(out, "  [ OK ] %s\n", slug)
		}
		if ok, err := a.env.Outdated(slug); err == nil && ok {
			fmt.Fprintf(out, "  [INFO] %s: newer package available in %s\n", slug, a.cfg.PluginsSource)
		}
	}
	return nil
}
