// Package config provides configuration management for pixlink.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Extract: batch_size, pack_months, request_timeout_sec, max_retries
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Run.SourceNames, Run.Layers, Run.YearStart, Run.YearEnd (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use PIXLINK_ prefix with underscores for nesting:
//
//	PIXLINK_DATABASE_HOST=localhost
//	PIXLINK_DATABASE_PORT=5432
//	PIXLINK_LOG_LEVEL=info
//	PIXLINK_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete pixlink configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Extract contains settings specific to the batched value extraction.
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for the CPU-bound
	// geometry-to-grid mapping. Default value is set according to the
	// number of available threads. Extraction batches stay sequential.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// Run holds per-invocation filters. CLI flags only, never persisted.
	Run RunConfig

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize defines the number of rows per bulk INSERT for pixel maps,
	// long pixel values and summaries. PostgreSQL allows 65535 query
	// parameters, so the effective batch is capped by parameters-per-row.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// ExtractConfig contains settings for the batched value extraction phase.
type ExtractConfig struct {
	// BatchSize is the maximum number of pixel points sampled by one
	// remote request when months are not packed. When PackMonths is on,
	// the per-request point count shrinks to BatchSize / months so the
	// combined payload stays bounded. Per-source batch_size in
	// sources.yaml overrides this default.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// PackMonths requests all months of a year as one multi-band request
	// per pixel batch instead of one request per month. Cuts round-trips
	// roughly by the number of months. Per-source pack_months in
	// sources.yaml overrides this default.
	PackMonths bool `mapstructure:"pack_months" yaml:"pack_months"`

	// RequestTimeoutSec is the HTTP timeout for one remote sampling
	// request.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`

	// MaxRetries is the number of retries with exponential backoff for a
	// failed remote request before the batch is abandoned.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// RunConfig holds per-invocation filters shared by the pipeline commands.
// All fields are runtime-only: set by CLI flags, never read from config.yaml.
type RunConfig struct {
	// SourceNames restricts a command to the named climate sources.
	// Empty means all sources from sources.yaml.
	SourceNames []string

	// Layers restricts pixel-map building to the named survey layers.
	// Empty means all layers from sources.yaml.
	Layers []string

	// YearStart and YearEnd override a source's configured year range.
	// Zero means use the source's own range.
	YearStart int
	YearEnd   int
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "pixlink",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Extract: ExtractConfig{
			BatchSize:         6_000,
			PackMonths:        true,
			RequestTimeoutSec: 120,
			MaxRetries:        3,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
