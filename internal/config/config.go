package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extmgr-labs/extmgr/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys recognized in config.yaml. Nested keys map to EXTMGR_* env vars with
// dots replaced by underscores (settings.driver → EXTMGR_SETTINGS_DRIVER).
const (
	KeyCatalog          = "catalog"
	KeySettingsKey      = "settings.key"
	KeySettingsDriver   = "settings.driver"
	KeySettingsPath     = "settings.path"
	KeyRedisAddr        = "settings.redis.addr"
	KeyRedisPassword    = "settings.redis.password"
	KeyRedisDB          = "settings.redis.db"
	KeyRedisPrefix      = "settings.redis.prefix"
	KeyMySQLDSN         = "settings.mysql.dsn"
	KeyMySQLTable       = "settings.mysql.table"
	KeyPluginsDir       = "plugins.dir"
	KeyPluginsSource    = "plugins.source"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyEventsAMQPURL    = "events.amqp_url"
	KeyEventsExchange   = "events.exchange"
	defaultCatalogFile  = "extensions.yaml"
	defaultSettingsFile = "settings.yaml"
)

// Settings is the typed view over the loaded configuration.
type Settings struct {
	CatalogPath string

	SettingsKey    string
	SettingsDriver string
	SettingsPath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	MySQLDSN   string
	MySQLTable string

	PluginsDir    string
	PluginsSource string

	LogLevel  string
	LogFormat string

	AMQPURL  string
	Exchange string
}

// Dir returns the path to the config directory (~/.extmgr/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.extmgr/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// An explicit path overrides ~/.extmgr/config.yaml.
func Load(path string) {
	if path == "" {
		path = FilePath()
	}
	viper.SetConfigFile(path)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func setDefaults() {
	dir := Dir()
	viper.SetDefault(KeyCatalog, defaultCatalogFile)
	viper.SetDefault(KeySettingsKey, "")
	viper.SetDefault(KeySettingsDriver, "file")
	viper.SetDefault(KeySettingsPath, filepath.Join(dir, defaultSettingsFile))
	viper.SetDefault(KeyRedisDB, 0)
	viper.SetDefault(KeyRedisPrefix, branding.CLIName()+":")
	viper.SetDefault(KeyMySQLTable, "options")
	viper.SetDefault(KeyPluginsDir, filepath.Join(dir, "plugins"))
	viper.SetDefault(KeyPluginsSource, filepath.Join(dir, "packages"))
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyEventsExchange, branding.CLIName()+".events")
}

// Current returns the typed settings from the loaded configuration.
func Current() Settings {
	return Settings{
		CatalogPath:    viper.GetString(KeyCatalog),
		SettingsKey:    viper.GetString(KeySettingsKey),
		SettingsDriver: viper.GetString(KeySettingsDriver),
		SettingsPath:   viper.GetString(KeySettingsPath),
		RedisAddr:      viper.GetString(KeyRedisAddr),
		RedisPassword:  viper.GetString(KeyRedisPassword),
		RedisDB:        viper.GetInt(KeyRedisDB),
		RedisPrefix:    viper.GetString(KeyRedisPrefix),
		MySQLDSN:       viper.GetString(KeyMySQLDSN),
		MySQLTable:     viper.GetString(KeyMySQLTable),
		PluginsDir:     viper.GetString(KeyPluginsDir),
		PluginsSource:  viper.GetString(KeyPluginsSource),
		LogLevel:       viper.GetString(KeyLogLevel),
		LogFormat:      viper.GetString(KeyLogFormat),
		AMQPURL:        viper.GetString(KeyEventsAMQPURL),
		Exchange:       viper.GetString(KeyEventsExchange),
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Override sets a value for the current process without saving it.
func Override(key string, value any) {
	viper.Set(key, value)
}

// Set writes a config key-value pair to the config file. Only what the file
// already holds plus the new key is written: process overrides, environment
// values, and defaults stay out of it.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
			return fmt.Errorf("creating config directory for %s: %w", configFile, err)
		}
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	file := viper.New()
	file.SetConfigFile(configFile)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	file.Set(key, value)

	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Keep the running process consistent with the file.
	viper.Set(key, value)
	return nil
}
