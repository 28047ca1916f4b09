package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/extmgr-labs/extmgr/internal/branding"
	"github.com/extmgr-labs/extmgr/internal/config"
	"github.com/extmgr-labs/extmgr/internal/environment"
	"github.com/extmgr-labs/extmgr/internal/events"
	"github.com/extmgr-labs/extmgr/internal/extension"
	"github.com/extmgr-labs/extmgr/internal/manifest"
	"github.com/extmgr-labs/extmgr/internal/settings"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app bundles the collaborators one command invocation works with.
type app struct {
	cfg      config.Settings
	catalog  *extension.Catalog
	store    settings.Store
	env      *environment.Local
	notifier notifier
	registry *extension.Registry
}

type notifier interface {
	extension.Notifier
	io.Closer
}

func (a *app) Close() error {
	var errs []error
	if a.notifier != nil {
		errs = append(errs, a.notifier.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// withRegistry builds the app before fn runs and closes it afterwards.
func withRegistry(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), settingsLoaded, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("closing resources")
			}
		}()
		return fn(cmd, a, args)
	}
}

func newApp(ctx context.Context, cfg config.Settings, log zerolog.Logger) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := loadCatalog(cfg.CatalogPath, log)
	if err != nil {
		return nil, err
	}

	store, err := settings.Open(ctx, settings.Config{
		Driver: cfg.SettingsDriver,
		Path:   cfg.SettingsPath,
		Redis: settings.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		},
		MySQL: settings.MySQLConfig{
			DSN:   cfg.MySQLDSN,
			Table: cfg.MySQLTable,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	a := &app{
		cfg:      cfg,
		catalog:  cat,
		store:    store,
		env:      environment.NewLocal(cfg.PluginsDir, cfg.PluginsSource, environment.WithLogger(log)),
		notifier: newNotifier(cfg, log),
	}
	a.registry = extension.New(
		settingsKeyFor(cfg, cat),
		cat.Extensions,
		store,
		a.env,
		extension.WithNotifier(a.notifier),
		extension.WithLogger(log),
	)
	return a, nil
}

// settingsKeyFor picks the settings key: catalog first, then config, then
// the product default.
func settingsKeyFor(cfg config.Settings, cat *extension.Catalog) string {
	switch {
	case cat != nil && cat.SettingsKey != "":
		return cat.SettingsKey
	case cfg.SettingsKey != "":
		return cfg.SettingsKey
	default:
		return branding.DefaultSettingsKey()
	}
}

// loadCatalog reads the catalog and logs schema issues without rejecting it.
func loadCatalog(path string, log zerolog.Logger) (*extension.Catalog, error) {
	if path == "" {
		path = extension.CatalogFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog not found at %s (use --catalog or set %s)", path, config.KeyCatalog)
	}

	if result, err := manifest.ValidateFile(path, manifest.KindCatalog); err == nil && !result.Valid {
		for _, issue := range result.Issues {
			log.Warn().Str("catalog", path).Msg(issue.String())
		}
	}

	return extension.LoadCatalog(path)
}

func newNotifier(cfg config.Settings, log zerolog.Logger) notifier {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	p, err := events.NewAMQPPublisher(events.AMQPConfig{URL: cfg.AMQPURL, Exchange: cfg.Exchange})
	if err != nil {
		log.Warn().Err(err).Msg("event publishing disabled")
		return events.Nop{}
	}
	return p
}
