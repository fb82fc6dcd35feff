package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read by Load when no files are given. Missing files
// are skipped.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Load reads configuration from environment variables.
// Existing envFiles (DefaultEnvFiles when none are given) are loaded first;
// variables already set in the environment win over file values.
// Returns an error if parsing or validation fails.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, errors.Wrap(err, "config load")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "config load")
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}
	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Import.Duplicates = strings.ToLower(strings.TrimSpace(c.Import.Duplicates))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	if c.Store.Driver == "postgres" && c.Store.URL == "" {
		errs = append(errs, "DATABASE_URL is required when STORE_DRIVER is postgres")
	}
	if c.Store.MaxConns < c.Store.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Store.MaxConns, c.Store.MinConns))
	}
	if c.Redis.URL != "" {
		if _, err := url.Parse(c.Redis.URL); err != nil {
			errs = append(errs, fmt.Sprintf("REDIS_URL is not a valid URL: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s (%q) must be one of: %s",
			fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be non-negative", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// String returns a safe string representation of the config for logging.
// Passwords in connection strings are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Store: {Driver: %q, URL: %q, MaxConns: %d, MinConns: %d}, ",
		c.Store.Driver, maskURL(c.Store.URL), c.Store.MaxConns, c.Store.MinConns))
	b.WriteString(fmt.Sprintf("Import: {Supplement: %v, Duplicates: %q, Layout: %q}, ",
		c.Import.Supplement, c.Import.Duplicates, c.Import.LayoutFile))
	b.WriteString(fmt.Sprintf("Resolver: {Fuzzy: %v, MaxDistance: %d, CacheTTL: %s}, ",
		c.Resolver.Fuzzy, c.Resolver.FuzzyMaxDistance, c.Resolver.CacheTTL))
	b.WriteString(fmt.Sprintf("Redis: {URL: %q}, ", maskURL(c.Redis.URL)))
	b.WriteString(fmt.Sprintf("Body: {Root: %q, MaxSize: %d}, ", c.Body.Root, c.Body.MaxSize))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// maskURL hides the password of a connection string.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[MASKED]"
	}
	return u.Redacted()
}
