// Package config manages environment variables.
//
// It reads variables from the process environment (and from a `.env` file
// if one exists), loads them into structured Go types, and validates that
// required values are present so they can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for every block so a bare `api serve` runs on memory.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix KVCRUD_.

	Keys are normalized: the prefix is removed, the rest is lowercased and
	a double underscore becomes the "." nesting delimiter, so
	KVCRUD_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "KVCRUD_"

// ReservedResourceNames are paths taken by system routes.
var ReservedResourceNames = []string{"status", "metrics"}

// Store drivers understood by StoreConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
type Config struct {
	Primary       Primary             `koanf:"primary" validate:"required"`
	Server        ServerConfig        `koanf:"server" validate:"required"`
	Store         StoreConfig         `koanf:"store" validate:"required"`
	Database      DatabaseConfig      `koanf:"database"`
	Redis         RedisConfig         `koanf:"redis"`
	SQLite        SQLiteConfig        `koanf:"sqlite"`
	Resources     []string            `koanf:"resources" validate:"required,min=1,dive,required,alphanum,lowercase"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs and to switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// BodyLimit uses echo's size notation, e.g. "1M" or "512K".
	BodyLimit string `koanf:"body_limit" validate:"required"`

	// RateLimitRPS is the per-client request rate. Zero disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"min=0"`

	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// StoreConfig selects the key-value backend.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory redis postgres sqlite"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// Only read when Store.Driver is "postgres".
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`

	// AutoMigrate runs the embedded migrations on `serve`.
	AutoMigrate bool `koanf:"auto_migrate"`

	// LogQueries enables pgx query tracing through zerolog.
	LogQueries bool `koanf:"log_queries"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SQLiteConfig points at the database file used by the sqlite driver.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// DefaultConfig returns the configuration used for any key the
// environment does not set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "3000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          "1M",
			RateLimitBurst:     20,
			MetricsEnabled:     true,
		},
		Store: StoreConfig{Driver: DriverMemory},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		Redis:         RedisConfig{Address: "localhost:6379"},
		SQLite:        SQLiteConfig{Path: "kvcrud.db"},
		Resources:     []string{"tasks", "todos"},
		Observability: *DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it, applies observability defaults, and returns
// the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix KVCRUD_
//   - Unmarshals into Config, keeping defaults for unset keys
//   - Validates tags, then the driver-specific blocks
//   - Pins the observability service name and environment, then validates it
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()

	// ZeroFields makes a list from the environment replace the default list
	// instead of being merged into it index by index.
	err = k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			ZeroFields:       true,
			Result:           mainConfig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	// Service naming is fixed so telemetry groups consistently.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// Validate runs the struct-tag validator and then the rules that depend
// on which store driver is selected.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Store.Driver {
	case DriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for the %s driver", DriverRedis)
		}
	case DriverPostgres:
		d := c.Database
		if d.Host == "" || d.Port == 0 || d.User == "" || d.Name == "" {
			return fmt.Errorf("database host, port, user and name are required for the %s driver", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required for the %s driver", DriverSQLite)
		}
	}

	seen := make(map[string]bool, len(c.Resources))
	for _, name := range c.Resources {
		if slices.Contains(ReservedResourceNames, name) {
			return fmt.Errorf("resource %q collides with a system route", name)
		}
		if seen[name] {
			return fmt.Errorf("resource %q is listed twice", name)
		}
		seen[name] = true
	}

	return nil
}
