package settings

import (
	"context"
	"errors"
	"fmt"
)

// Store reads and writes preference maps by settings key.
type Store interface {
	Read(ctx context.Context, key string) (map[string]string, error)
	Write(ctx context.Context, key string, values map[string]string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
)

// ErrUnknownDriver is returned by Open for unrecognized driver names.
var ErrUnknownDriver = errors.New("unknown settings driver")

// Config selects and configures a backend.
type Config struct {
	Driver string

	// Path is the YAML file used by the file driver.
	Path string

	Redis RedisConfig
	MySQL MySQLConfig
}

// Open creates the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case "", DriverFile:
		return NewFile(cfg.Path)
	case DriverRedis:
		return NewRedis(ctx, cfg.Redis)
	case DriverMySQL:
		return NewMySQL(ctx, cfg.MySQL)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDriver, cfg.Driver)
	}
}

func clone(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
