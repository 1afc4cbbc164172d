// Package iotesting provides shared test utilities for integration
// tests. This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"testing"

	"github.com/ecoclim/pixlink/internal/ioconfig"
	"github.com/ecoclim/pixlink/internal/iofs"
	"github.com/ecoclim/pixlink/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration
	// tests, so tests never accidentally run against a production
	// database.
	TestDatabaseName = "pixlink_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (from file or defaults) and overrides the
// database name to TestDatabaseName for safety.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	var cfg *config.Config

	homeDir, err := os.UserHomeDir()
	if err != nil {
		cfg = config.New()
	} else {
		result, err := ioconfig.Load(homeDir)
		if err != nil {
			cfg = config.New()
			cfg.Update([]config.Option{config.OptHomeDir(homeDir)})
		} else {
			cfg = result.Config
		}
	}

	// Always use the test database.
	cfg.Database.Database = TestDatabaseName
	return cfg
}

// SetupTempHome creates a temporary home directory for a test, with the
// pixlink config, cache and log directories already in place. Tests that
// write config, sources or extraction files should use this so they
// never touch the real home directory. Cleanup is automatic.
//
// Returns the absolute path of the temporary home directory.
func SetupTempHome(t *testing.T) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := iofs.EnsureDirs(homeDir); err != nil {
		t.Fatalf("Failed to create pixlink dirs under %s: %v",
			homeDir, err)
	}
	return homeDir
}

// WriteTempSourcesYAML writes a sources.yaml into a temporary home
// directory. Must be called after SetupTempHome.
//
// Usage:
//
//	homeDir := iotesting.SetupTempHome(t)
//	iotesting.WriteTempSourcesYAML(t, homeDir, `
//	climate_sources:
//	  - name: prism
//	    ...
//	`)
func WriteTempSourcesYAML(t *testing.T, homeDir, content string) {
	t.Helper()

	path := config.SourcesFilePath(homeDir)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp sources.yaml: %v", err)
	}
}
