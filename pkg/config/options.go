package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows per bulk INSERT.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptExtractBatchSize sets the default number of pixel points per
// remote sampling request.
func OptExtractBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Extract Batch Size", i) {
			c.Extract.BatchSize = i
		}
	}
}

// OptExtractPackMonths toggles packing all months of a year into one
// multi-band request per pixel batch.
func OptExtractPackMonths(b bool) Option {
	return func(c *Config) {
		c.Extract.PackMonths = b
	}
}

// OptExtractRequestTimeoutSec sets the HTTP timeout for one remote
// sampling request.
func OptExtractRequestTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Extract Request Timeout", i) {
			c.Extract.RequestTimeoutSec = i
		}
	}
}

// OptExtractMaxRetries sets the retry budget for a failed remote request.
func OptExtractMaxRetries(i int) Option {
	return func(c *Config) {
		if i >= 0 {
			c.Extract.MaxRetries = i
		}
	}
}

// OptLogFormat sets the log output format ('json' or 'text').
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogLevel sets the logging level.
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogDestination sets where logs are written ('file', 'stdout', 'stderr').
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for geometry mapping.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptRunSourceNames restricts a command to the named climate sources.
// Runtime-only field - not in ToOptions().
func OptRunSourceNames(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Run.SourceNames = ss
		}
	}
}

// OptRunLayers restricts pixel-map building to the named survey layers.
// Runtime-only field - not in ToOptions().
func OptRunLayers(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Run.Layers = ss
		}
	}
}

// OptRunYears overrides the year range of processed sources.
// Runtime-only field - not in ToOptions().
func OptRunYears(start, end int) Option {
	return func(c *Config) {
		if start > 0 {
			c.Run.YearStart = start
		}
		if end > 0 {
			c.Run.YearEnd = end
		}
	}
}

// OptHomeDir sets the directory that holds config, cache and logs.
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
