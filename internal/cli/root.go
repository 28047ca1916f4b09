package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/extmgr-labs/extmgr/internal/branding"
	"github.com/extmgr-labs/extmgr/internal/config"
	"github.com/extmgr-labs/extmgr/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	cfgFile        string
	catalogFlag    string
	driverFlag     string
	logLevelFlag   string
	logger         = zerolog.Nop()
	settingsLoaded config.Settings
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves the status of modules, addons, plugins, and host plugins
declared in an extension catalog, stores on/off preferences, and drives plugin
install and activation in the local plugin directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load(cfgFile)
		if catalogFlag != "" {
			config.Override(config.KeyCatalog, catalogFlag)
		}
		if driverFlag != "" {
			config.Override(config.KeySettingsDriver, driverFlag)
		}
		if logLevelFlag != "" {
			config.Override(config.KeyLogLevel, logLevelFlag)
		}
		settingsLoaded = config.Current()

		l, err := logging.New(cmd.ErrOrStderr(), settingsLoaded.LogLevel, settingsLoaded.LogFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "", "Extension catalog file (default extensions.yaml)")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "settings-driver", "", "Settings backend: memory, file, redis, mysql")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
