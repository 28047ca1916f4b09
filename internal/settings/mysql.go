package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig describes the MySQL connection and the options table.
type MySQLConfig struct {
	DSN             string
	Table           string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// MySQL stores each settings key as one JSON row in an options table.
type MySQL struct {
	db    *sql.DB
	table string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// NewMySQL opens the database, verifies the connection, and creates the
// options table if needed.
func NewMySQL(ctx context.Context, cfg MySQLConfig) (*MySQL, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("mysql DSN is empty")
	}
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, fmt.Errorf("parsing mysql DSN: %w", err)
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(4)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(10 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to mysql: %w", err)
	}

	store, err := NewMySQLFromDB(db, cfg.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewMySQLFromDB wraps an open database. The table defaults to "options".
func NewMySQLFromDB(db *sql.DB, table string) (*MySQL, error) {
	if table == "" {
		table = "options"
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid mysql table name %q", table)
	}
	return &MySQL{db: db, table: table}, nil
}

// EnsureSchema creates the options table if it does not exist.
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (\n"+
		"  option_name VARCHAR(191) NOT NULL PRIMARY KEY,\n"+
		"  option_value LONGTEXT NOT NULL,\n"+
		"  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP\n"+
		")", m.table)
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating table %s: %w", m.table, err)
	}
	return nil
}

// Read returns the map stored under key, or an empty map.
func (m *MySQL) Read(ctx context.Context, key string) (map[string]string, error) {
	query := fmt.Sprintf("SELECT option_value FROM `%s` WHERE option_name = ?", m.table)

	var raw string
	err := m.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading option %s: %w", key, err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decoding option %s: %w", key, err)
	}
	return values, nil
}

// Write upserts the map stored under key.
func (m *MySQL) Write(ctx context.Context, key string, values map[string]string) error {
	if values == nil {
		values = make(map[string]string)
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding option %s: %w", key, err)
	}

	query := fmt.Sprintf("INSERT INTO `%s` (option_name, option_value) VALUES (?, ?) "+
		"ON DUPLICATE KEY UPDATE option_value = VALUES(option_value)", m.table)
	if _, err := m.db.ExecContext(ctx, query, key, string(raw)); err != nil {
		return fmt.Errorf("writing option %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (m *MySQL) Close() error {
	return m.db.Close()
}
