// Package ioconfig provides I/O operations for loading configuration
// from files, environment variables and flags. This is an impure package
// that handles file system and flag operations.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadResult contains the loaded configuration and metadata about the source.
type LoadResult struct {
	Config     *config.Config
	SourcePath string // Path to config file used, or empty if using defaults
	Source     string // "file", "defaults", or "defaults+env"
}

// Load reads configuration from config.yaml in the home directory's
// config dir and returns a Config with source info.
//
// Precedence: env vars > config file > defaults. CLI flags are applied
// later via BindFlags. A missing config file is not an error; malformed
// YAML is.
func Load(homeDir string) (*LoadResult, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Enable environment variable overrides.
	v.SetEnvPrefix("PIXLINK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults BEFORE reading config so viper knows which keys to
	// check for env vars even when the config file omits them.
	defaults := config.New()
	v.SetDefault("database.host", defaults.Database.Host)
	v.SetDefault("database.port", defaults.Database.Port)
	v.SetDefault("database.user", defaults.Database.User)
	v.SetDefault("database.password", defaults.Database.Password)
	v.SetDefault("database.database", defaults.Database.Database)
	v.SetDefault("database.ssl_mode", defaults.Database.SSLMode)
	v.SetDefault("database.batch_size", defaults.Database.BatchSize)
	v.SetDefault("extract.batch_size", defaults.Extract.BatchSize)
	v.SetDefault("extract.pack_months", defaults.Extract.PackMonths)
	v.SetDefault("extract.request_timeout_sec",
		defaults.Extract.RequestTimeoutSec)
	v.SetDefault("extract.max_retries", defaults.Extract.MaxRetries)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.destination", defaults.Log.Destination)
	v.SetDefault("jobs_number", defaults.JobsNumber)

	configPath := config.ConfigFilePath(homeDir)
	configFileRead := false
	usedConfigPath := ""

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	// Unmarshal into a raw Config, then funnel through Options so
	// invalid values are rejected with warnings instead of propagating.
	var raw config.Config
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := config.New()
	cfg.Update(raw.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

// hasEnvVars checks if any PIXLINK_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PIXLINK_") {
			return true
		}
	}
	return false
}

// BindFlags applies cobra command flags to the config. CLI flags take
// precedence over config file and environment values. Only flags the
// user actually set are applied.
func BindFlags(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	var opts []config.Option
	if cmd.Flags().Changed("host") {
		opts = append(opts, config.OptDatabaseHost(v.GetString("host")))
	}
	if cmd.Flags().Changed("port") {
		opts = append(opts, config.OptDatabasePort(v.GetInt("port")))
	}
	if cmd.Flags().Changed("user") {
		opts = append(opts, config.OptDatabaseUser(v.GetString("user")))
	}
	if cmd.Flags().Changed("password") {
		opts = append(opts,
			config.OptDatabasePassword(v.GetString("password")))
	}
	if cmd.Flags().Changed("database") {
		opts = append(opts,
			config.OptDatabaseDatabase(v.GetString("database")))
	}
	if cmd.Flags().Changed("ssl-mode") {
		opts = append(opts,
			config.OptDatabaseSSLMode(v.GetString("ssl-mode")))
	}
	if cmd.Flags().Changed("jobs") {
		opts = append(opts, config.OptJobsNumber(v.GetInt("jobs")))
	}
	if cmd.Flags().Changed("sources") {
		opts = append(opts,
			config.OptRunSourceNames(v.GetStringSlice("sources")))
	}
	if cmd.Flags().Changed("layers") {
		opts = append(opts,
			config.OptRunLayers(v.GetStringSlice("layers")))
	}
	if cmd.Flags().Changed("year-start") || cmd.Flags().Changed("year-end") {
		opts = append(opts,
			config.OptRunYears(v.GetInt("year-start"), v.GetInt("year-end")))
	}

	cfg.Update(opts)
	return cfg, nil
}
