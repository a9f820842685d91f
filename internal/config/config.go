// Package config loads studydeck settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable the loader reads.
// Nested keys are separated by a double underscore, e.g.
// STUDYDECK_DATABASE__DSN.
const EnvPrefix = "STUDYDECK_"

// DefaultFile is read when no config file is given and it exists.
const DefaultFile = "studydeck.yaml"

type Config struct {
	Env      string         `koanf:"env" validate:"oneof=development production"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Sync     SyncConfig     `koanf:"sync"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN             string        `koanf:"dsn" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"gte=0"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required,hostname_port"`
	NotificationDelay time.Duration `koanf:"notification_delay" validate:"gte=0"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
}

type SyncConfig struct {
	ReposDir      string        `koanf:"repos_dir" validate:"required"`
	Interval      time.Duration `koanf:"interval" validate:"gte=0"`
	RetryAttempts uint          `koanf:"retry_attempts" validate:"gte=1,lte=10"`
}

var defaults = map[string]interface{}{
	"env":                        "development",
	"log.level":                  "info",
	"database.driver":            "sqlite",
	"database.dsn":               "studydeck.db",
	"database.max_open_conns":    1,
	"database.max_idle_conns":    2,
	"database.conn_max_lifetime": time.Duration(0),
	"server.addr":                ":8080",
	"server.notification_delay":  2 * time.Second,
	"server.read_timeout":        15 * time.Second,
	"server.write_timeout":       15 * time.Second,
	"sync.repos_dir":             "repos",
	"sync.interval":              time.Duration(0),
	"sync.retry_attempts":        3,
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"env":           "env",
	"log-level":     "log.level",
	"db-driver":     "database.driver",
	"dsn":           "database.dsn",
	"addr":          "server.addr",
	"repos-dir":     "sync.repos_dir",
	"sync-interval": "sync.interval",
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file (default "+DefaultFile+" when present)")
	fs.String("env", "development", "runtime environment: development or production")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("db-driver", "sqlite", "database driver: sqlite or postgres")
	fs.String("dsn", "studydeck.db", "database data source name")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("repos-dir", "repos", "directory git sources are cloned into")
	fs.Duration("sync-interval", 0, "periodic source sync interval, 0 disables")
}

// Load builds the configuration. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path == "" && flags != nil {
		if p, err := flags.GetString("config"); err == nil {
			path = p
		}
	}
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns STUDYDECK_DATABASE__MAX_OPEN_CONNS into database.max_open_conns.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
