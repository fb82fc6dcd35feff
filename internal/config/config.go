// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables (optionally seeded from
// .env files) with sensible defaults and validates all settings on startup to
// fail fast on misconfiguration.
package config

import (
	"time"

	"github.com/JonMunkholm/importdata/internal/store/postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Store    StoreConfig
	Import   ImportConfig
	Resolver ResolverConfig
	Redis    RedisConfig
	Body     BodyConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Driver is the store implementation: memory or postgres (default: postgres)
	Driver string `env:"STORE_DRIVER" envDefault:"postgres" validate:"oneof=memory postgres"`

	// URL is the PostgreSQL connection string, required for the postgres driver
	URL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"4" validate:"gt=0"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" envDefault:"1" validate:"gte=0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h" validate:"gte=0"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m" validate:"gte=0"`

	// Migrate applies pending migrations before an import (default: false)
	Migrate bool `env:"DB_MIGRATE" envDefault:"false"`
}

// ImportConfig holds the defaults for import runs. Command line flags win.
type ImportConfig struct {
	// Supplement updates duplicates instead of rejecting them (default: false)
	Supplement bool `env:"IMPORT_SUPPLEMENT" envDefault:"false"`

	// Duplicates is the duplicate policy: reject or ignore (default: reject)
	Duplicates string `env:"IMPORT_DUPLICATES" envDefault:"reject" validate:"oneof=reject ignore"`

	// LayoutFile is a YAML file overriding sheet names and shifts
	LayoutFile string `env:"IMPORT_LAYOUT_FILE"`

	// ReportFile receives the JSON batch report when set
	ReportFile string `env:"IMPORT_REPORT_FILE"`

	// Timeout bounds a whole run, 0 disables it (default: 0s)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" envDefault:"0s" validate:"gte=0"`
}

// ResolverConfig holds reference lookup settings.
type ResolverConfig struct {
	// Fuzzy enables the fuzzy fallback for directory lookups (default: false)
	Fuzzy bool `env:"RESOLVER_FUZZY" envDefault:"false"`

	// FuzzyMaxDistance is the largest accepted edit distance (default: 2)
	FuzzyMaxDistance int `env:"RESOLVER_FUZZY_MAX_DISTANCE" envDefault:"2" validate:"gte=0"`

	// CacheTTL is how long shared cache entries live (default: 1h)
	CacheTTL time.Duration `env:"RESOLVER_CACHE_TTL" envDefault:"1h" validate:"gt=0"`
}

// RedisConfig holds the shared lookup cache connection.
type RedisConfig struct {
	// URL is a redis:// connection string. Empty keeps the cache in-process
	URL string `env:"REDIS_URL"`
}

// BodyConfig holds document body settings.
type BodyConfig struct {
	// Root resolves relative body paths (default: working directory)
	Root string `env:"BODY_ROOT"`

	// MaxSize is the largest accepted body in bytes (default: 50MB)
	MaxSize int64 `env:"BODY_MAX_SIZE" envDefault:"52428800" validate:"gt=0"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format at the end of a run
	Textfile string `env:"METRICS_TEXTFILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error, silent (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error silent"`

	// Format is the log output format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	// File also receives every entry when set
	File string `env:"LOG_FILE"`
}

// Postgres returns the pool settings for the postgres store.
func (c StoreConfig) Postgres() postgres.Config {
	return postgres.Config{
		URL:             c.URL,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
	}
}
