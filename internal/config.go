package internal

import (
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/skyroute/internal/flightdb"
	"github.com/starford/skyroute/internal/routing"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Dataset DatasetConfig     `yaml:"dataset"`
	Search  SearchConfig      `yaml:"search"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DatasetConfig points at the flight ticket summary.
//
// Format is "csv" or "sqlite"; when empty it is detected from the file
// extension. Watch enables hot reload when the file changes on disk.
type DatasetConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Watch  bool   `yaml:"watch"`
}

// Validate validates the dataset configuration.
func (c *DatasetConfig) Validate() error {
	if c.Format == "" {
		c.Format = flightdb.DetectFormat(c.Path)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Format, validation.In(flightdb.FormatCSV, flightdb.FormatSQLite)),
	)
}

// SearchConfig holds query defaults and per-query budgets.
//
// Timezone localizes cutoff instants entered without an offset (CLI,
// query strings, MCP arguments). The routing core never reads it.
type SearchConfig struct {
	MaxHops        int           `yaml:"max_hops"`
	MinLayover     time.Duration `yaml:"min_layover"`
	Timezone       string        `yaml:"timezone"`
	MaxExpansions  int           `yaml:"max_expansions"`
	Timeout        time.Duration `yaml:"timeout"`
	Workers        int           `yaml:"workers"`
	GraphCacheSize int           `yaml:"graph_cache_size"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MaxHops, validation.Required, validation.Min(1), validation.Max(8)),
		validation.Field(&c.MinLayover, validation.Min(time.Duration(0))),
		validation.Field(&c.Timezone, validation.Required),
		validation.Field(&c.MaxExpansions, validation.Min(0)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.GraphCacheSize, validation.Min(0)),
	); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("search: timezone: %w", err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *SearchConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Dataset: DatasetConfig{
			Path: "./data/processed/flight_ticket_summary.csv",
		},
		Search: SearchConfig{
			MaxHops:        routing.DefaultMaxHops,
			MinLayover:     routing.DefaultMinLayover,
			Timezone:       "Europe/Moscow",
			MaxExpansions:  200000,
			Timeout:        5 * time.Second,
			Workers:        4,
			GraphCacheSize: 8,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
